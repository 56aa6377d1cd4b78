package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// 模型目录内的词典文件名（与模型包发布格式一致）
const (
	PolyphonicCharsFile  = "POLYPHONIC_CHARS.txt"
	MonophonicCharsFile  = "MONOPHONIC_CHARS.txt"
	CharBopomofoFile     = "char_bopomofo_dict.json"
	BopomofoToPinyinFile = "bopomofo_to_pinyin_wo_tune_dict.json"
	S2TDictFile          = "bert-base-chinese_s2t_dict.txt"
	VocabFile            = "vocab.txt"
)

// Lexicon 模型词典集合：多音字候选读音、单音字读音、通用注音词典、注音拼音映射、简繁映射
type Lexicon struct {
	Labels        []string         // 标签表，模型输出下标对应的读音
	Chars         []string         // 多音字列表（排序后），下标即 char_id
	char2Phonemes map[string][]int // 多音字 -> 候选标签下标
	charIDs       map[string]int
	mono          map[string]string   // 单音字 -> 读音
	charBopomofo  map[string][]string // 通用注音词典（含非多音字）
	bpmfToPinyin  map[string]string   // 注音（不含声调） -> 拼音
	s2t           map[string]string   // 简体 -> 繁体
	useCharPhone  bool
}

// Load 从模型目录加载全部词典
// useCharPhoneme 为 true 时标签形如 "字 注音"，否则仅为注音
func Load(modelDir string, useCharPhoneme bool) (*Lexicon, error) {
	polyPairs, err := readPairs(filepath.Join(modelDir, PolyphonicCharsFile))
	if err != nil {
		return nil, fmt.Errorf("读取多音字表失败: %v", err)
	}
	monoPairs, err := readPairs(filepath.Join(modelDir, MonophonicCharsFile))
	if err != nil {
		return nil, fmt.Errorf("读取单音字表失败: %v", err)
	}

	lex := &Lexicon{
		char2Phonemes: make(map[string][]int),
		charIDs:       make(map[string]int),
		mono:          make(map[string]string, len(monoPairs)),
		useCharPhone:  useCharPhoneme,
	}
	for _, p := range monoPairs {
		lex.mono[p[0]] = p[1]
	}

	if useCharPhoneme {
		lex.buildCharPhonemeLabels(polyPairs)
	} else {
		lex.buildPhonemeLabels(polyPairs)
	}

	chars := make([]string, 0, len(lex.char2Phonemes))
	for ch := range lex.char2Phonemes {
		chars = append(chars, ch)
	}
	sort.Strings(chars)
	lex.Chars = chars
	for i, ch := range chars {
		lex.charIDs[ch] = i
	}

	if err := readJSON(filepath.Join(modelDir, CharBopomofoFile), &lex.charBopomofo); err != nil {
		return nil, fmt.Errorf("读取注音词典失败: %v", err)
	}
	if err := readJSON(filepath.Join(modelDir, BopomofoToPinyinFile), &lex.bpmfToPinyin); err != nil {
		return nil, fmt.Errorf("读取注音拼音映射失败: %v", err)
	}

	// 简繁映射为可选文件
	s2tPath := filepath.Join(modelDir, S2TDictFile)
	if _, err := os.Stat(s2tPath); err == nil {
		pairs, err := readPairs(s2tPath)
		if err != nil {
			return nil, fmt.Errorf("读取简繁映射失败: %v", err)
		}
		lex.s2t = make(map[string]string, len(pairs))
		for _, p := range pairs {
			lex.s2t[p[0]] = p[1]
		}
	}

	return lex, nil
}

// buildPhonemeLabels 标签为全部候选读音去重排序
func (l *Lexicon) buildPhonemeLabels(pairs [][2]string) {
	seen := make(map[string]struct{})
	for _, p := range pairs {
		seen[p[1]] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for ph := range seen {
		labels = append(labels, ph)
	}
	sort.Strings(labels)
	l.Labels = labels

	index := make(map[string]int, len(labels))
	for i, ph := range labels {
		index[ph] = i
	}
	for _, p := range pairs {
		l.char2Phonemes[p[0]] = append(l.char2Phonemes[p[0]], index[p[1]])
	}
}

// buildCharPhonemeLabels 标签形如 "字 注音"，区分同读音不同字
func (l *Lexicon) buildCharPhonemeLabels(pairs [][2]string) {
	seen := make(map[string]struct{})
	for _, p := range pairs {
		seen[p[0]+" "+p[1]] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for lb := range seen {
		labels = append(labels, lb)
	}
	sort.Strings(labels)
	l.Labels = labels

	for i, lb := range labels {
		ch := strings.SplitN(lb, " ", 2)[0]
		l.char2Phonemes[ch] = append(l.char2Phonemes[ch], i)
	}
}

// IsPolyphonic 是否为多音字
func (l *Lexicon) IsPolyphonic(char string) bool {
	_, ok := l.char2Phonemes[char]
	return ok
}

// CharID 多音字下标，非多音字返回 -1
func (l *Lexicon) CharID(char string) int {
	if id, ok := l.charIDs[char]; ok {
		return id
	}
	return -1
}

// CandidateLabelIDs 多音字的候选标签下标
func (l *Lexicon) CandidateLabelIDs(char string) []int {
	return l.char2Phonemes[char]
}

// MonoPhoneme 单音字读音
func (l *Lexicon) MonoPhoneme(char string) (string, bool) {
	ph, ok := l.mono[char]
	return ph, ok
}

// KnownReading 通用注音词典中的首个读音
func (l *Lexicon) KnownReading(char string) (string, bool) {
	readings, ok := l.charBopomofo[char]
	if !ok || len(readings) == 0 {
		return "", false
	}
	return readings[0], true
}

// LabelPhoneme 从预测标签提取读音（use_char_phoneme 时去掉字前缀）
func (l *Lexicon) LabelPhoneme(label string) string {
	if !l.useCharPhone {
		return label
	}
	parts := strings.SplitN(label, " ", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return label
}

// S2T 简体句子逐字转繁体，映射缺失的字保持不变，长度不变
func (l *Lexicon) S2T(sentence string) string {
	if l.s2t == nil {
		return sentence
	}
	var sb strings.Builder
	for _, r := range sentence {
		if t, ok := l.s2t[string(r)]; ok {
			sb.WriteString(t)
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// readPairs 读取制表符分隔的两列文本文件
func readPairs(path string) ([][2]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	pairs := make([][2]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("词典行格式错误: %q", line)
		}
		pairs = append(pairs, [2]string{parts[0], parts[1]})
	}
	return pairs, nil
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
