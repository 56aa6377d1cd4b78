package service

import "testing"

// TestParseUnderscoreFormat 测试下划线标注格式
func TestParseUnderscoreFormat(t *testing.T) {
	parser := NewAnnotationParser()

	parsed := parser.Parse("我们都_dou1_喜欢")
	if parsed.ErrorReason != "" {
		t.Fatalf("解析失败: %s", parsed.ErrorReason)
	}
	if parsed.Clean != "我们都喜欢" {
		t.Errorf("Clean = %q, want 我们都喜欢", parsed.Clean)
	}
	if len(parsed.Marks) != 1 {
		t.Fatalf("Marks len = %d, want 1", len(parsed.Marks))
	}
	if parsed.Marks[0].CharIndex != 2 || parsed.Marks[0].Phoneme != "dou1" {
		t.Errorf("Mark = %+v, want {2 dou1}", parsed.Marks[0])
	}
}

// TestParseMultipleMarks 测试一行多处标注
func TestParseMultipleMarks(t *testing.T) {
	parser := NewAnnotationParser()

	parsed := parser.Parse("他说_shuo1_的都_dou1_对")
	if parsed.Clean != "他说的都对" {
		t.Errorf("Clean = %q, want 他说的都对", parsed.Clean)
	}
	if len(parsed.Marks) != 2 {
		t.Fatalf("Marks len = %d, want 2", len(parsed.Marks))
	}
	if parsed.Marks[0].CharIndex != 1 || parsed.Marks[0].Phoneme != "shuo1" {
		t.Errorf("Marks[0] = %+v, want {1 shuo1}", parsed.Marks[0])
	}
	if parsed.Marks[1].CharIndex != 3 || parsed.Marks[1].Phoneme != "dou1" {
		t.Errorf("Marks[1] = %+v, want {3 dou1}", parsed.Marks[1])
	}
}

// TestParseSpaceFormat 测试空格标注格式
func TestParseSpaceFormat(t *testing.T) {
	parser := NewAnnotationParser()

	parsed := parser.Parse("我们都 dou1")
	if parsed.Clean != "我们都" {
		t.Errorf("Clean = %q, want 我们都", parsed.Clean)
	}
	if len(parsed.Marks) != 1 {
		t.Fatalf("Marks len = %d, want 1", len(parsed.Marks))
	}
	if parsed.Marks[0].CharIndex != 2 || parsed.Marks[0].Phoneme != "dou1" {
		t.Errorf("Mark = %+v, want {2 dou1}", parsed.Marks[0])
	}
}

// TestParseInvalidLines 测试空行、无标注与非法内容
func TestParseInvalidLines(t *testing.T) {
	parser := NewAnnotationParser()

	if parsed := parser.Parse(""); parsed.ErrorReason != "空行" {
		t.Errorf("空行 ErrorReason = %q", parsed.ErrorReason)
	}
	if parsed := parser.Parse("   "); parsed.ErrorReason != "空行" {
		t.Errorf("空白行 ErrorReason = %q", parsed.ErrorReason)
	}

	parsed := parser.Parse("没有任何标注的句子")
	if parsed.ErrorReason != "没有注音标注" {
		t.Errorf("无标注行 ErrorReason = %q", parsed.ErrorReason)
	}
	if parsed.Clean != "没有任何标注的句子" {
		t.Errorf("无标注行应保留原句: %q", parsed.Clean)
	}

	if parsed := parser.Parse("我们\xff都"); parsed.ErrorReason != "非法 UTF-8 内容" {
		t.Errorf("非法 UTF-8 ErrorReason = %q", parsed.ErrorReason)
	}
}

// TestParseToneWithColon 测试带儿化/轻声记号的读音
func TestParseToneWithColon(t *testing.T) {
	parser := NewAnnotationParser()

	parsed := parser.Parse("他着_zhe5_急")
	if len(parsed.Marks) != 1 || parsed.Marks[0].Phoneme != "zhe5" {
		t.Fatalf("Marks = %+v", parsed.Marks)
	}
}
