package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"

	"g2pw-converter/config"
	"g2pw-converter/pkg/service"
	"g2pw-converter/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewConvertCommand() *cobra.Command {
	var configFilePath string
	var inputFilePath string
	var style string

	cmd := &cobra.Command{
		Use:   "convert [句子...]",
		Short: "将中文句子转换为拼音或注音",
		Long:  "句子来自位置参数、--input 文件（每行一句）或标准输入，逐句输出 JSON 行",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.TryLoadFromDisk(configFilePath)
			if err != nil {
				zap.S().Errorf("读取本地配置文件错误:%s", err.Error())
				return
			}
			if style != "" {
				cfg.ModelConfig.Style = style
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				zap.S().Errorf("本地配置文件验证错误:%s", errors.Join(errs...))
				return
			}

			sentences, err := collectSentences(args, inputFilePath)
			if err != nil {
				zap.S().Errorf("读取输入错误:%s", err.Error())
				return
			}
			if len(sentences) == 0 {
				zap.S().Error("没有待转换的句子")
				return
			}

			ctx := signals.SetupSignalHandler()

			converter, err := service.NewConverter(cfg.ModelConfig, cfg.SegmenterConfig)
			if err != nil {
				zap.S().Errorf("初始化转换器错误:%s", err.Error())
				return
			}
			defer converter.Close()

			results, err := converter.Convert(ctx, sentences)
			if err != nil {
				zap.S().Errorf("转换失败:%s", err.Error())
				return
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetEscapeHTML(false)
			for _, result := range results {
				if err := encoder.Encode(result); err != nil {
					zap.S().Errorf("输出结果失败:%s", err.Error())
					return
				}
			}
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径")
	cmd.Flags().StringVarP(&inputFilePath, "input", "i", "", "输入文件路径，每行一句")
	cmd.Flags().StringVarP(&style, "style", "s", "", "输出风格，覆盖配置（bopomofo | pinyin）")
	return cmd
}

// collectSentences 收集待转换句子：位置参数优先，其次输入文件，最后标准输入
func collectSentences(args []string, inputFilePath string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var reader *bufio.Scanner
	if inputFilePath != "" {
		f, err := os.Open(inputFilePath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader = bufio.NewScanner(f)
	} else {
		reader = bufio.NewScanner(os.Stdin)
	}

	var sentences []string
	for reader.Scan() {
		line := reader.Text()
		if line == "" {
			continue
		}
		sentences = append(sentences, line)
	}
	return sentences, reader.Err()
}
