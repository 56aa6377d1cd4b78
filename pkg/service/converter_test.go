package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"g2pw-converter/config"
	"g2pw-converter/pkg/dataset"
	"g2pw-converter/pkg/lexicon"
	"g2pw-converter/pkg/tokenizer"
)

// fakeBackend 假推理后端：每条查询在首个候选标签上概率最大
type fakeBackend struct {
	calls  int
	failOn bool // 为 true 时调用即失败
	t      *testing.T
}

func (f *fakeBackend) Run(batch *dataset.Batch) ([][]float32, error) {
	if f.failOn {
		f.t.Fatal("不应触发推理")
	}
	f.calls++
	probs := make([][]float32, batch.Size())
	for i := range probs {
		row := make([]float32, len(batch.PhonemeMask[i]))
		for j, m := range batch.PhonemeMask[i] {
			if m == 1 {
				row[j] = 0.9
				break
			}
		}
		probs[i] = row
	}
	return probs, nil
}

func (f *fakeBackend) HasPOSInput() bool { return false }
func (f *fakeBackend) Close() error      { return nil }

func newTestConverter(t *testing.T, cfg *config.ModelConfig, backend Backend) *Converter {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		lexicon.PolyphonicCharsFile:  "都\tㄉㄡ1\n都\tㄉㄨ1\n了\tㄌㄜ5\n了\tㄌㄧㄠ3\n",
		lexicon.MonophonicCharsFile:  "我\tㄨㄛ3\n们\tㄇㄣ5\n",
		lexicon.CharBopomofoFile:     `{"好": ["ㄏㄠ3", "ㄏㄠ4"]}`,
		lexicon.BopomofoToPinyinFile: `{"ㄉㄡ": "dou", "ㄉㄨ": "du", "ㄨㄛ": "wo", "ㄇㄣ": "men", "ㄏㄠ": "hao", "ㄌㄜ": "le", "ㄌㄧㄠ": "liao"}`,
		lexicon.VocabFile:            "[PAD]\n[UNK]\n[CLS]\n[SEP]\n我\n们\n都\n好\n了\n中\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("写入 %s 失败: %v", name, err)
		}
	}

	lex, err := lexicon.Load(dir, cfg.UseCharPhoneme)
	if err != nil {
		t.Fatalf("加载词典失败: %v", err)
	}
	tok, err := tokenizer.Load(filepath.Join(dir, lexicon.VocabFile))
	if err != nil {
		t.Fatalf("加载词表失败: %v", err)
	}
	return NewConverterWithBackend(cfg, lex, tok, nil, backend)
}

func testModelConfig() *config.ModelConfig {
	cfg := config.NewDefaultModelConfig()
	cfg.Style = config.StylePinyin
	return cfg
}

// TestConvertShapes 测试批长与句长不变式
func TestConvertShapes(t *testing.T) {
	converter := newTestConverter(t, testModelConfig(), &fakeBackend{t: t})

	sentences := []string{"我们都好了", "", "好"}
	results, err := converter.Convert(context.Background(), sentences)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if len(results) != len(sentences) {
		t.Fatalf("results len = %d, want %d", len(results), len(sentences))
	}
	wantLens := []int{5, 0, 1}
	for i, result := range results {
		if len(result.Readings) != wantLens[i] {
			t.Errorf("第 %d 句读音数 = %d, want %d", i, len(result.Readings), wantLens[i])
		}
	}
}

// TestConvertReadings 测试单音字、注音词典与模型消歧的回填
func TestConvertReadings(t *testing.T) {
	converter := newTestConverter(t, testModelConfig(), &fakeBackend{t: t})

	result, err := converter.ConvertOne(context.Background(), "我们都好了")
	if err != nil {
		t.Fatalf("ConvertOne failed: %v", err)
	}

	// 假后端恒选首个候选：都 -> ㄉㄡ1 -> dou1，了 -> ㄌㄜ5 -> le5
	want := []string{"wo3", "men5", "dou1", "hao3", "le5"}
	for i, w := range want {
		if result.Readings[i] == nil {
			t.Fatalf("Readings[%d] 为 nil, want %q", i, w)
		}
		if *result.Readings[i] != w {
			t.Errorf("Readings[%d] = %q, want %q", i, *result.Readings[i], w)
		}
	}

	// 多音字位置有置信度，其余为 0
	if result.Confidences[2] != 0.9 || result.Confidences[4] != 0.9 {
		t.Errorf("多音字置信度错误: %v", result.Confidences)
	}
	if result.Confidences[0] != 0 {
		t.Errorf("单音字置信度应为 0: %v", result.Confidences)
	}
}

// TestConvertNoPolyphonic 测试无多音字时不触发推理
func TestConvertNoPolyphonic(t *testing.T) {
	converter := newTestConverter(t, testModelConfig(), &fakeBackend{t: t, failOn: true})

	result, err := converter.ConvertOne(context.Background(), "我们好")
	if err != nil {
		t.Fatalf("ConvertOne failed: %v", err)
	}
	for i, r := range result.Readings {
		if r == nil {
			t.Errorf("Readings[%d] 不应为 nil", i)
		}
	}
}

// TestConvertFallback 测试未收录字的 go-pinyin 兜底
func TestConvertFallback(t *testing.T) {
	converter := newTestConverter(t, testModelConfig(), &fakeBackend{t: t, failOn: true})

	result, err := converter.ConvertOne(context.Background(), "中")
	if err != nil {
		t.Fatalf("ConvertOne failed: %v", err)
	}
	if result.Readings[0] == nil || *result.Readings[0] != "zhong1" {
		t.Errorf("Readings[0] = %v, want zhong1", result.Readings[0])
	}

	// 注音风格下没有兜底词典
	cfg := testModelConfig()
	cfg.Style = config.StyleBopomofo
	converter = newTestConverter(t, cfg, &fakeBackend{t: t, failOn: true})
	result, err = converter.ConvertOne(context.Background(), "中")
	if err != nil {
		t.Fatalf("ConvertOne failed: %v", err)
	}
	if result.Readings[0] != nil {
		t.Errorf("注音风格下未收录字应为 nil, got %q", *result.Readings[0])
	}
}

// TestConvertBatching 测试按批大小分批推理
func TestConvertBatching(t *testing.T) {
	cfg := testModelConfig()
	cfg.BatchSize = 1
	backend := &fakeBackend{t: t}
	converter := newTestConverter(t, cfg, backend)

	_, err := converter.Convert(context.Background(), []string{"都了", "都"})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if backend.calls != 3 {
		t.Errorf("推理批次数 = %d, want 3", backend.calls)
	}
}

// TestConvertCancelled 测试上下文取消
func TestConvertCancelled(t *testing.T) {
	converter := newTestConverter(t, testModelConfig(), &fakeBackend{t: t})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := converter.Convert(ctx, []string{"都"}); err == nil {
		t.Fatal("已取消的上下文应返回错误")
	}
}

// TestConvertBopomofoStyle 测试注音风格输出
func TestConvertBopomofoStyle(t *testing.T) {
	cfg := testModelConfig()
	cfg.Style = config.StyleBopomofo
	converter := newTestConverter(t, cfg, &fakeBackend{t: t})

	result, err := converter.ConvertOne(context.Background(), "我都")
	if err != nil {
		t.Fatalf("ConvertOne failed: %v", err)
	}
	if *result.Readings[0] != "ㄨㄛ3" || *result.Readings[1] != "ㄉㄡ1" {
		t.Errorf("Readings = %q %q", *result.Readings[0], *result.Readings[1])
	}
}
