package service

import (
	"context"
	"fmt"
	"time"

	"g2pw-converter/pkg/db"
	"g2pw-converter/pkg/model"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type CorpusService struct {
	parser *AnnotationParser
}

func NewCorpusService() *CorpusService {
	return &CorpusService{
		parser: NewAnnotationParser(),
	}
}

// ImportToDuckDB 从 MySQL 的 tbl_g2p_corpus 表分批读取标注语料，
// 解析出多音字样本后写入 DuckDB 的 g2p_samples 表
// 解析失败的行同样落库，错误原因记录在 error_reason 字段中
func (s *CorpusService) ImportToDuckDB(ctx context.Context, batchSize int) error {
	if err := s.createDuckDBTable(ctx); err != nil {
		return fmt.Errorf("创建 DuckDB 表失败: %v", err)
	}

	mysqlDB := db.GetMySQL()
	if mysqlDB == nil {
		return fmt.Errorf("MySQL 连接未初始化")
	}

	startTime := time.Now()
	offset := 0
	imported := 0
	skipped := 0
	failed := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var rows []model.CorpusSentence
		if err := mysqlDB.WithContext(ctx).
			Order("id").
			Limit(batchSize).
			Offset(offset).
			Find(&rows).Error; err != nil {
			return fmt.Errorf("查询语料失败: %v", err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			n, err := s.parseAndInsert(ctx, &row)
			if err != nil {
				zap.S().Warnf("处理语料 ID %d 失败: %v", row.ID, err)
				failed++
				continue
			}
			if n == 0 {
				skipped++
				continue
			}
			imported += n
		}

		offset += batchSize
	}

	zap.S().Infof("导入完成: 样本 %d 条, 跳过 %d 行, 失败 %d 行", imported, skipped, failed)
	zap.S().Infof("耗时：%s", time.Since(startTime))
	return nil
}

// createDuckDBTable 创建 DuckDB 样本表
func (s *CorpusService) createDuckDBTable(ctx context.Context) error {
	duckDB := db.GetDuckDBWithContext(ctx)
	if duckDB == nil {
		return fmt.Errorf("DuckDB 连接未初始化")
	}

	// 删除旧表（如果存在），确保使用正确的表结构
	_, err := duckDB.ExecContext(ctx, "DROP TABLE IF EXISTS g2p_samples")
	if err != nil {
		return fmt.Errorf("删除旧表失败: %v", err)
	}

	createTableSQL := `
		CREATE TABLE g2p_samples (
			id TEXT PRIMARY KEY,
			sentence TEXT,
			char_index INTEGER,
			phoneme TEXT,
			source_id BIGINT,
			source TEXT,
			error_reason TEXT
		)
	`

	_, err = duckDB.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("创建表失败: %v", err)
	}

	zap.S().Debug("DuckDB 表创建成功")
	return nil
}

// buildSamples 解析单行语料并构造待落库的样本，返回样本与有效标注数
// 无有效标注的行也产出一条记录，错误原因写入 error_reason 字段，便于统计语料质量
func (s *CorpusService) buildSamples(row *model.CorpusSentence) ([]model.Sample, int) {
	// 来源优先取 source 列，为空时从 meta JSON 里宽松提取
	source := row.Source
	if source == "" && row.Meta.Data != nil {
		source = cast.ToString(row.Meta.Data["source"])
	}

	parsed := s.parser.Parse(row.Text)
	if len(parsed.Marks) == 0 {
		return []model.Sample{{
			ID:          uuid.NewString(),
			Sentence:    parsed.Clean,
			CharIndex:   -1,
			SourceID:    row.ID,
			Source:      source,
			ErrorReason: parsed.ErrorReason,
		}}, 0
	}

	samples := make([]model.Sample, 0, len(parsed.Marks))
	for _, mark := range parsed.Marks {
		samples = append(samples, model.Sample{
			ID:        uuid.NewString(),
			Sentence:  parsed.Clean,
			CharIndex: mark.CharIndex,
			Phoneme:   mark.Phoneme,
			SourceID:  row.ID,
			Source:    source,
		})
	}
	return samples, len(parsed.Marks)
}

// parseAndInsert 解析单行语料并插入样本，返回产出的样本数
func (s *CorpusService) parseAndInsert(ctx context.Context, row *model.CorpusSentence) (int, error) {
	duckDB := db.GetDuckDBWithContext(ctx)
	if duckDB == nil {
		return 0, fmt.Errorf("DuckDB 连接未初始化")
	}

	insertSQL := `
		INSERT INTO g2p_samples (id, sentence, char_index, phoneme, source_id, source, error_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	samples, n := s.buildSamples(row)
	for _, sample := range samples {
		_, err := duckDB.ExecContext(ctx, insertSQL,
			sample.ID, sample.Sentence, sample.CharIndex, sample.Phoneme,
			sample.SourceID, sample.Source, sample.ErrorReason)
		if err != nil {
			return 0, fmt.Errorf("插入数据失败: %v", err)
		}
	}
	return n, nil
}

// GetSampleCount 获取有效样本数量
func (s *CorpusService) GetSampleCount(ctx context.Context) (int64, error) {
	duckDB := db.GetDuckDBWithContext(ctx)
	if duckDB == nil {
		return 0, fmt.Errorf("DuckDB 连接未初始化")
	}

	var count int64
	err := duckDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM g2p_samples WHERE error_reason = ''").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("查询数量失败: %v", err)
	}

	return count, nil
}
