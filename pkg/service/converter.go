package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"g2pw-converter/config"
	"g2pw-converter/pkg/dataset"
	"g2pw-converter/pkg/lexicon"
	"g2pw-converter/pkg/model"
	"g2pw-converter/pkg/onnx"
	"g2pw-converter/pkg/postag"
	"g2pw-converter/pkg/tokenizer"

	"go.uber.org/zap"
)

// Backend 推理后端接口，便于测试注入假实现
type Backend interface {
	Run(batch *dataset.Batch) ([][]float32, error)
	HasPOSInput() bool
	Close() error
}

// Converter 中文多音字 G2P 转换器
// 多音字经模型消歧，单音字与通用注音词典直取，未收录字走拼音兜底
type Converter struct {
	cfg     *config.ModelConfig
	lex     *lexicon.Lexicon
	builder *dataset.Builder
	backend Backend
	tagger  *postag.Tagger
}

// query 一次模型查询及其回填位置
type query struct {
	dataset.Query
	sentID int
}

// NewConverter 从模型目录加载词典、词表并创建 onnx 推理会话
func NewConverter(cfg *config.ModelConfig, segCfg *config.SegmenterConfig) (*Converter, error) {
	onnxPath := cfg.OnnxModelPath()
	if _, err := os.Stat(onnxPath); err != nil {
		return nil, fmt.Errorf("模型文件 %s 不存在，请先执行 download 子命令", onnxPath)
	}

	lex, err := lexicon.Load(cfg.ModelDir, cfg.UseCharPhoneme)
	if err != nil {
		return nil, err
	}
	tok, err := tokenizer.Load(filepath.Join(cfg.ModelDir, lexicon.VocabFile))
	if err != nil {
		return nil, err
	}

	backend, err := onnx.NewSession(onnxPath, onnx.Options{
		LibraryPath: cfg.OnnxRuntimeLibPath,
		NumThreads:  cfg.NumThreads,
	})
	if err != nil {
		return nil, err
	}

	var tagger *postag.Tagger
	if cfg.UsePOS && segCfg != nil {
		tagger, err = postag.NewTagger(segCfg.CRFModelPath, segCfg.POSDictPath)
		if err != nil {
			backend.Close()
			return nil, err
		}
		if !tagger.Enabled() {
			zap.S().Warn("已启用词性特征但未配置 CRF 分词模型，词性将恒为 UNK")
		}
	}

	return NewConverterWithBackend(cfg, lex, tok, tagger, backend), nil
}

// NewConverterWithBackend 以现成组件组装转换器
func NewConverterWithBackend(cfg *config.ModelConfig, lex *lexicon.Lexicon, tok *tokenizer.Tokenizer,
	tagger *postag.Tagger, backend Backend) *Converter {
	return &Converter{
		cfg:     cfg,
		lex:     lex,
		builder: dataset.NewBuilder(tok, lex, cfg.WindowSize, cfg.UseMask),
		backend: backend,
		tagger:  tagger,
	}
}

// Close 释放推理会话
func (c *Converter) Close() error {
	if c.backend != nil {
		return c.backend.Close()
	}
	return nil
}

// ConvertOne 单句转换
func (c *Converter) ConvertOne(ctx context.Context, sentence string) (*model.SentenceResult, error) {
	results, err := c.Convert(ctx, []string{sentence})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Convert 批量转换，结果批长与输入批长一致，每句读音数与 rune 数一致
func (c *Converter) Convert(ctx context.Context, sentences []string) ([]*model.SentenceResult, error) {
	startTime := time.Now()

	results := make([]*model.SentenceResult, len(sentences))
	queries := make([]query, 0)

	for sentID, sent := range sentences {
		lookup := sent
		if c.cfg.EnableS2T {
			lookup = c.lex.S2T(sent)
			if utf8.RuneCountInString(lookup) != utf8.RuneCountInString(sent) {
				return nil, fmt.Errorf("简繁转换改变了句长: %q -> %q", sent, lookup)
			}
		}

		runes := []rune(lookup)
		result := &model.SentenceResult{
			Sentence:    sent,
			Readings:    make([]*string, len(runes)),
			Confidences: make([]float32, len(runes)),
		}
		results[sentID] = result

		for i, r := range runes {
			char := string(r)
			switch {
			case c.lex.IsPolyphonic(char):
				q := dataset.Query{Sentence: lookup, CharIndex: i, Char: char}
				if c.tagger != nil && c.backend.HasPOSInput() {
					q.POSID = c.tagger.IndexAt(lookup, i)
				}
				queries = append(queries, query{Query: q, sentID: sentID})
			default:
				result.Readings[i] = c.resolveStatic(char)
			}
		}
	}

	// 没有多音字时不触发推理
	if len(queries) == 0 {
		return results, nil
	}

	for start := 0; start < len(queries); start += c.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + c.cfg.BatchSize
		if end > len(queries) {
			end = len(queries)
		}
		if err := c.runBatch(queries[start:end], results); err != nil {
			return nil, err
		}
	}

	zap.S().Debugf("转换 %d 句，%d 次多音字查询，耗时 %s", len(sentences), len(queries), time.Since(startTime))
	return results, nil
}

// runBatch 执行一批多音字查询并回填结果
func (c *Converter) runBatch(batch []query, results []*model.SentenceResult) error {
	dsQueries := make([]dataset.Query, len(batch))
	for i, q := range batch {
		dsQueries[i] = q.Query
	}

	probs, err := c.backend.Run(c.builder.Build(dsQueries))
	if err != nil {
		return err
	}
	if len(probs) != len(batch) {
		return fmt.Errorf("推理结果数量 %d 与查询数量 %d 不符", len(probs), len(batch))
	}

	for i, q := range batch {
		pred, conf := argmax(probs[i])
		if pred < 0 || pred >= len(c.lex.Labels) {
			return fmt.Errorf("预测标签下标越界: %d", pred)
		}
		phoneme := c.lex.LabelPhoneme(c.lex.Labels[pred])
		result := results[q.sentID]
		if converted, ok := c.lex.ConvertStyle(c.cfg.Style, phoneme); ok {
			result.Readings[q.CharIndex] = &converted
		}
		result.Confidences[q.CharIndex] = conf
	}
	return nil
}

// resolveStatic 非多音字读音：单音字表、通用注音词典、go-pinyin 兜底
func (c *Converter) resolveStatic(char string) *string {
	if phoneme, ok := c.lex.MonoPhoneme(char); ok {
		if converted, ok := c.lex.ConvertStyle(c.cfg.Style, phoneme); ok {
			return &converted
		}
		return nil
	}
	if reading, ok := c.lex.KnownReading(char); ok {
		if converted, ok := c.lex.ConvertStyle(c.cfg.Style, reading); ok {
			return &converted
		}
		return nil
	}
	// 注音风格下没有兜底词典
	if c.cfg.Style == config.StylePinyin {
		if fallback, ok := lexicon.FallbackPinyin([]rune(char)[0]); ok {
			return &fallback
		}
	}
	return nil
}

func argmax(probs []float32) (int, float32) {
	best := -1
	var bestProb float32
	for i, p := range probs {
		if best == -1 || p > bestProb {
			best = i
			bestProb = p
		}
	}
	return best, bestProb
}
