package service

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"g2pw-converter/pkg/db"
	"g2pw-converter/pkg/model"
	"g2pw-converter/pkg/postag"

	"go.uber.org/zap"
)

// ExportOptions 数据集导出参数
type ExportOptions struct {
	OutputDir string
	DevSize   int
	TestSize  int
	Seed      int64
}

// ExportService 将 DuckDB 中的样本导出为训练数据集
// 每个划分产出三个文件：.sent（查询字两侧下划线标记）、.lb（读音）、.pos（词性标签）
type ExportService struct {
	tagger *postag.Tagger
}

func NewExportService(tagger *postag.Tagger) *ExportService {
	return &ExportService{tagger: tagger}
}

// Export 读取全部有效样本，打乱后按 dev/test 大小划分并写出
func (s *ExportService) Export(ctx context.Context, opts ExportOptions) error {
	startTime := time.Now()

	samples, err := s.loadSamples(ctx)
	if err != nil {
		return err
	}
	splits, err := splitSamples(samples, opts.DevSize, opts.TestSize, opts.Seed)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %v", err)
	}

	for _, split := range splits {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeSplit(opts.OutputDir, split.name, split.samples); err != nil {
			return err
		}
		zap.S().Infof("%s: %d 条样本", split.name, len(split.samples))
	}

	zap.S().Infof("耗时：%s", time.Since(startTime))
	return nil
}

// datasetSplit 一个数据集划分
type datasetSplit struct {
	name    string
	samples []model.Sample
}

// splitSamples 按种子打乱后划分 dev/test/train
// 样本数不足 devSize+testSize 时报错
func splitSamples(samples []model.Sample, devSize, testSize int, seed int64) ([]datasetSplit, error) {
	if len(samples) < devSize+testSize {
		return nil, fmt.Errorf("样本数 %d 不足以划分 dev(%d) 与 test(%d)", len(samples), devSize, testSize)
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})

	return []datasetSplit{
		{"dev", samples[:devSize]},
		{"test", samples[devSize : devSize+testSize]},
		{"train", samples[devSize+testSize:]},
	}, nil
}

// loadSamples 读取全部有效样本
func (s *ExportService) loadSamples(ctx context.Context) ([]model.Sample, error) {
	duckDB := db.GetDuckDBWithContext(ctx)
	if duckDB == nil {
		return nil, fmt.Errorf("DuckDB 连接未初始化")
	}

	rows, err := duckDB.QueryContext(ctx,
		"SELECT id, sentence, char_index, phoneme FROM g2p_samples WHERE error_reason = '' ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("查询样本失败: %v", err)
	}
	defer rows.Close()

	var samples []model.Sample
	for rows.Next() {
		var sample model.Sample
		if err := rows.Scan(&sample.ID, &sample.Sentence, &sample.CharIndex, &sample.Phoneme); err != nil {
			zap.S().Warnf("扫描样本失败: %v", err)
			continue
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// writeSplit 写出一个划分的 .sent/.lb/.pos 三个文件
func (s *ExportService) writeSplit(outputDir, name string, samples []model.Sample) error {
	sentFile, err := os.Create(filepath.Join(outputDir, name+".sent"))
	if err != nil {
		return fmt.Errorf("创建 %s.sent 失败: %v", name, err)
	}
	defer sentFile.Close()
	lbFile, err := os.Create(filepath.Join(outputDir, name+".lb"))
	if err != nil {
		return fmt.Errorf("创建 %s.lb 失败: %v", name, err)
	}
	defer lbFile.Close()
	posFile, err := os.Create(filepath.Join(outputDir, name+".pos"))
	if err != nil {
		return fmt.Errorf("创建 %s.pos 失败: %v", name, err)
	}
	defer posFile.Close()

	sentW := bufio.NewWriter(sentFile)
	lbW := bufio.NewWriter(lbFile)
	posW := bufio.NewWriter(posFile)

	for _, sample := range samples {
		marked, ok := markChar(sample.Sentence, sample.CharIndex)
		if !ok {
			zap.S().Warnf("样本 %s 下标越界，跳过: %q[%d]", sample.ID, sample.Sentence, sample.CharIndex)
			continue
		}
		fmt.Fprintln(sentW, marked)
		fmt.Fprintln(lbW, sample.Phoneme)

		tag := "UNK"
		if s.tagger != nil {
			tag = s.tagger.TagAt(sample.Sentence, sample.CharIndex)
		}
		fmt.Fprintln(posW, tag)
	}

	for _, w := range []*bufio.Writer{sentW, lbW, posW} {
		if err := w.Flush(); err != nil {
			return fmt.Errorf("写出 %s 划分失败: %v", name, err)
		}
	}
	return nil
}

// markChar 在查询字两侧插入下划线标记
func markChar(sentence string, charIndex int) (string, bool) {
	runes := []rune(sentence)
	if charIndex < 0 || charIndex >= len(runes) {
		return "", false
	}
	out := make([]rune, 0, len(runes)+2)
	out = append(out, runes[:charIndex]...)
	out = append(out, '_', runes[charIndex], '_')
	out = append(out, runes[charIndex+1:]...)
	return string(out), true
}
