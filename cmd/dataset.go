package cmd

import (
	"errors"

	"g2pw-converter/config"
	"g2pw-converter/pkg/db"
	"g2pw-converter/pkg/postag"
	"g2pw-converter/pkg/service"
	"g2pw-converter/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewDatasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "多音字训练数据集管理",
	}
	cmd.AddCommand(newDatasetImportCommand())
	cmd.AddCommand(newDatasetExportCommand())
	return cmd
}

func newDatasetImportCommand() *cobra.Command {
	var configFilePath string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "import",
		Short: "将 MySQL 标注语料导入 DuckDB",
		Long:  "从 MySQL 的 tbl_g2p_corpus 表读取带注音标注的语料，解析出多音字样本后存储到 DuckDB",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.TryLoadFromDisk(configFilePath)
			if err != nil {
				zap.S().Errorf("读取本地配置文件错误:%s", err.Error())
				return
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				zap.S().Errorf("本地配置文件验证错误:%s", errors.Join(errs...))
				return
			}

			if cfg.MySQLConfig == nil {
				zap.S().Error("MySQL 配置未设置")
				return
			}
			if cfg.DuckDBConfig == nil {
				zap.S().Error("DuckDB 配置未设置")
				return
			}

			ctx := signals.SetupSignalHandler()

			if err := db.InitMySQL(cfg); err != nil {
				zap.S().Errorf("MySQL 数据库连接错误:%s", err.Error())
				return
			}
			if err := db.InitDuckDB(cfg.DuckDBConfig); err != nil {
				zap.S().Errorf("DuckDB 连接错误:%s", err.Error())
				return
			}

			corpusService := service.NewCorpusService()
			if err := corpusService.ImportToDuckDB(ctx, batchSize); err != nil {
				zap.S().Errorf("导入失败:%s", err.Error())
				return
			}

			count, err := corpusService.GetSampleCount(ctx)
			if err != nil {
				zap.S().Warnf("获取统计信息失败:%s", err.Error())
			} else {
				zap.S().Infof("DuckDB 中的有效样本数量: %d", count)
			}
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 100, "批量处理大小")
	return cmd
}

func newDatasetExportCommand() *cobra.Command {
	var configFilePath string
	var outputDir string
	var devSize int
	var testSize int
	var seed int64

	cmd := &cobra.Command{
		Use:   "export",
		Short: "从 DuckDB 导出训练数据集",
		Long:  "读取 DuckDB 中的多音字样本，打乱后划分 train/dev/test，产出 .sent/.lb/.pos 文件",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.TryLoadFromDisk(configFilePath)
			if err != nil {
				zap.S().Errorf("读取本地配置文件错误:%s", err.Error())
				return
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				zap.S().Errorf("本地配置文件验证错误:%s", errors.Join(errs...))
				return
			}

			if cfg.DuckDBConfig == nil {
				zap.S().Error("DuckDB 配置未设置")
				return
			}

			ctx := signals.SetupSignalHandler()

			if err := db.InitDuckDB(cfg.DuckDBConfig); err != nil {
				zap.S().Errorf("DuckDB 连接错误:%s", err.Error())
				return
			}

			var tagger *postag.Tagger
			if cfg.SegmenterConfig != nil {
				tagger, err = postag.NewTagger(cfg.SegmenterConfig.CRFModelPath, cfg.SegmenterConfig.POSDictPath)
				if err != nil {
					zap.S().Errorf("初始化词性标注器错误:%s", err.Error())
					return
				}
				if !tagger.Enabled() {
					zap.S().Warn("未配置 CRF 分词模型，.pos 文件中的标签将恒为 UNK")
				}
			}

			exportService := service.NewExportService(tagger)
			if err := exportService.Export(ctx, service.ExportOptions{
				OutputDir: outputDir,
				DevSize:   devSize,
				TestSize:  testSize,
				Seed:      seed,
			}); err != nil {
				zap.S().Errorf("导出失败:%s", err.Error())
				return
			}
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "./data", "数据集输出目录")
	cmd.Flags().IntVar(&devSize, "dev-size", 10000, "dev 集大小")
	cmd.Flags().IntVar(&testSize, "test-size", 10000, "test 集大小")
	cmd.Flags().Int64Var(&seed, "seed", 42, "打乱样本用的随机种子")
	return cmd
}
