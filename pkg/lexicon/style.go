package lexicon

import (
	"github.com/mozillazg/go-pinyin"
	"go.uber.org/zap"
)

// 输出风格
const (
	StyleBopomofo = "bopomofo" // 注音符号（模型原生输出）
	StylePinyin   = "pinyin"   // 拼音 + 声调数字
)

// ConvertStyle 按输出风格转换注音串
// style 为 pinyin 时将注音（末位为声调数字 1-5）映射为拼音加声调数字
// 映射失败返回 false，调用方置 nil
func (l *Lexicon) ConvertStyle(style string, bopomofo string) (string, bool) {
	if bopomofo == "" {
		return "", false
	}
	if style != StylePinyin {
		return bopomofo, true
	}

	runes := []rune(bopomofo)
	tone := runes[len(runes)-1]
	if tone < '1' || tone > '5' {
		zap.S().Warnf("注音 %q 缺少声调，无法转换为拼音", bopomofo)
		return "", false
	}
	component, ok := l.bpmfToPinyin[string(runes[:len(runes)-1])]
	if !ok {
		zap.S().Warnf("注音 %q 无法转换为拼音", bopomofo)
		return "", false
	}
	return component + string(tone), true
}

// FallbackPinyin 注音词典未收录的字走 go-pinyin 兜底，仅对 pinyin 风格有效
func FallbackPinyin(r rune) (string, bool) {
	a := pinyin.NewArgs()
	a.Style = pinyin.Tone3
	readings := pinyin.SinglePinyin(r, a)
	if len(readings) == 0 {
		return "", false
	}
	return readings[0], true
}
