package service

import (
	"testing"

	"g2pw-converter/pkg/model"
)

// TestBuildSamples 测试从标注语料行构造样本
func TestBuildSamples(t *testing.T) {
	s := NewCorpusService()

	samples, n := s.buildSamples(&model.CorpusSentence{
		ID:     7,
		Source: "news",
		Text:   "他说_shuo1_我们都_dou1_好",
	})
	if n != 2 || len(samples) != 2 {
		t.Fatalf("有效标注数 = %d, 样本数 = %d, 期望 2/2", n, len(samples))
	}
	for i, want := range []struct {
		charIndex int
		phoneme   string
	}{{1, "shuo1"}, {4, "dou1"}} {
		if samples[i].Sentence != "他说我们都好" {
			t.Errorf("样本 %d 句子 = %q", i, samples[i].Sentence)
		}
		if samples[i].CharIndex != want.charIndex || samples[i].Phoneme != want.phoneme {
			t.Errorf("样本 %d = (%d, %q), 期望 (%d, %q)",
				i, samples[i].CharIndex, samples[i].Phoneme, want.charIndex, want.phoneme)
		}
		if samples[i].SourceID != 7 || samples[i].Source != "news" {
			t.Errorf("样本 %d 来源 = (%d, %q)", i, samples[i].SourceID, samples[i].Source)
		}
		if samples[i].ErrorReason != "" {
			t.Errorf("有效样本不应有错误原因: %q", samples[i].ErrorReason)
		}
	}
}

// TestBuildSamplesNoMarks 无有效标注的行产出一条带错误原因的记录，有效标注数为 0
func TestBuildSamplesNoMarks(t *testing.T) {
	s := NewCorpusService()

	samples, n := s.buildSamples(&model.CorpusSentence{ID: 3, Text: "今天天气不错"})
	if n != 0 {
		t.Fatalf("有效标注数 = %d, 期望 0", n)
	}
	if len(samples) != 1 {
		t.Fatalf("样本数 = %d, 期望 1", len(samples))
	}
	if samples[0].ErrorReason == "" {
		t.Error("无标注行应记录错误原因")
	}
	if samples[0].CharIndex != -1 {
		t.Errorf("无标注行下标 = %d, 期望 -1", samples[0].CharIndex)
	}
}

// TestBuildSamplesMetaSource source 列为空时从 meta JSON 里提取来源
func TestBuildSamplesMetaSource(t *testing.T) {
	s := NewCorpusService()

	samples, _ := s.buildSamples(&model.CorpusSentence{
		ID:   9,
		Text: "都_dou1_",
		Meta: model.JSONMeta{Data: map[string]interface{}{"source": "wiki"}},
	})
	if len(samples) != 1 || samples[0].Source != "wiki" {
		t.Fatalf("来源 = %q, 期望 wiki", samples[0].Source)
	}
}
