package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// 两种标注格式：
// 1. 下划线格式："我们都_dou1_喜欢"，注记跟在多音字后
// 2. 空格格式："我们都 dou1"，注记以空格分隔跟在词后
// 两种格式被注记的都是前面汉字串的最后一个字
var (
	underscoreAnnotationRegex = regexp.MustCompile(`(\p{Han}+)_([a-z0-9:]+)_`)
	spaceAnnotationRegex      = regexp.MustCompile(`(\p{Han}+)\s+([a-z0-9:]+)`)
)

// Mark 一处注音标注：干净句中的 rune 下标与标注读音
type Mark struct {
	CharIndex int
	Phoneme   string
}

// AnnotatedSentence 一行标注语料的解析结果
// 解析失败时 Marks 为空，原因记录在 ErrorReason
type AnnotatedSentence struct {
	Clean       string // 去掉注记后的干净句子
	Marks       []Mark
	ErrorReason string
}

type AnnotationParser struct{}

func NewAnnotationParser() *AnnotationParser {
	return &AnnotationParser{}
}

// Parse 解析一行标注语料，优先按下划线格式，失败后尝试空格格式
// 即使解析失败也会返回结果，错误原因记录在 ErrorReason 字段中
func (p *AnnotationParser) Parse(line string) *AnnotatedSentence {
	line = strings.TrimSpace(line)
	result := &AnnotatedSentence{}

	if line == "" {
		result.ErrorReason = "空行"
		return result
	}
	if !utf8.ValidString(line) {
		result.ErrorReason = "非法 UTF-8 内容"
		return result
	}

	if underscoreAnnotationRegex.MatchString(line) {
		return p.parseWithRegex(line, underscoreAnnotationRegex)
	}
	if spaceAnnotationRegex.MatchString(line) {
		return p.parseWithRegex(line, spaceAnnotationRegex)
	}

	result.Clean = line
	result.ErrorReason = "没有注音标注"
	return result
}

// parseWithRegex 按给定格式提取全部标注
// 边拼接干净句边记录标注位置，避免注记删除后的位置偏移
func (p *AnnotationParser) parseWithRegex(line string, re *regexp.Regexp) *AnnotatedSentence {
	result := &AnnotatedSentence{}
	var clean strings.Builder
	cleanRunes := 0

	prev := 0
	for _, m := range re.FindAllStringSubmatchIndex(line, -1) {
		// m: [全匹配起止, 汉字串起止, 读音起止]
		hanEnd, phonemeStart, phonemeEnd := m[3], m[4], m[5]

		segment := line[prev:hanEnd]
		clean.WriteString(segment)
		cleanRunes += utf8.RuneCountInString(segment)

		result.Marks = append(result.Marks, Mark{
			CharIndex: cleanRunes - 1,
			Phoneme:   line[phonemeStart:phonemeEnd],
		})
		prev = m[1]
	}
	tail := line[prev:]
	clean.WriteString(tail)

	result.Clean = clean.String()
	return result
}
