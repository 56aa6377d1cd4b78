package postag

import (
	"fmt"
	"os"
	"strings"

	"github.com/teatak/seg/crf"
	"github.com/teatak/seg/dictionary"
	"github.com/teatak/seg/segmenter"
)

// POSTags g2pW 模型使用的 11 类词性标签，下标即 pos_id
var POSTags = []string{"UNK", "A", "C", "D", "I", "N", "P", "T", "V", "DE", "SHI"}

var posIndex = func() map[string]int64 {
	m := make(map[string]int64, len(POSTags))
	for i, tag := range POSTags {
		m[tag] = int64(i)
	}
	return m
}()

// Index 标签下标，未知标签按 UNK 处理
func Index(tag string) int64 {
	if id, ok := posIndex[tag]; ok {
		return id
	}
	return 0
}

// MapCKIP 将 CKIP 细粒度词性标签映射到 11 类标签
// DE（的）与 SHI（是）精确匹配，其余按首字母前缀归类
func MapCKIP(ckipTag string) string {
	if ckipTag == "DE" || ckipTag == "SHI" {
		return ckipTag
	}
	for _, prefix := range []string{"A", "C", "D", "I", "N", "P", "T", "V"} {
		if strings.HasPrefix(ckipTag, prefix) {
			return prefix
		}
	}
	return "UNK"
}

// Tagger 基于 CRF 分词与词性词典的标注器
// 未配置 CRF 模型时退化为恒返回 UNK
type Tagger struct {
	seg      *segmenter.Segmenter
	wordTags map[string]string
}

// NewTagger 创建标注器
// crfModelPath 为空时返回禁用的标注器；posDictPath（词\t CKIP 标签）可选
func NewTagger(crfModelPath, posDictPath string) (*Tagger, error) {
	t := &Tagger{}
	if crfModelPath == "" {
		return t, nil
	}

	dict := dictionary.NewDictionary()
	s := segmenter.NewSegmenter(dict)
	model := crf.NewModel()
	if err := model.Load(crfModelPath); err != nil {
		return nil, fmt.Errorf("加载 CRF 分词模型失败: %v", err)
	}
	s.CRFModel = model
	t.seg = s

	if posDictPath != "" {
		wordTags, err := loadPOSDict(posDictPath)
		if err != nil {
			return nil, err
		}
		t.wordTags = wordTags
	}
	return t, nil
}

// Enabled 是否可用
func (t *Tagger) Enabled() bool {
	return t.seg != nil
}

// TagAt 返回句中指定 rune 下标处的 11 类词性标签
// 分词后定位该字所在词，查词性词典并映射；任一步失败返回 UNK
func (t *Tagger) TagAt(sentence string, charIndex int) string {
	if t.seg == nil {
		return "UNK"
	}

	words := t.seg.Cut(sentence, segmenter.ModeCRF)
	cursor := 0
	for _, word := range words {
		wordLen := len([]rune(word))
		if charIndex >= cursor && charIndex < cursor+wordLen {
			if ckip, ok := t.wordTags[word]; ok {
				return MapCKIP(ckip)
			}
			return "UNK"
		}
		cursor += wordLen
	}
	return "UNK"
}

// IndexAt TagAt 的下标形式
func (t *Tagger) IndexAt(sentence string, charIndex int) int64 {
	return Index(t.TagAt(sentence, charIndex))
}

// loadPOSDict 加载词性词典，TSV 两列：词、CKIP 标签
func loadPOSDict(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取词性词典失败: %v", err)
	}
	wordTags := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		wordTags[parts[0]] = parts[1]
	}
	return wordTags, nil
}
