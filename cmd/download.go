package cmd

import (
	"errors"

	"g2pw-converter/config"
	"g2pw-converter/pkg/service"
	"g2pw-converter/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewDownloadCommand() *cobra.Command {
	var configFilePath string
	var url string
	var modelDir string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "下载并解压 G2PW 模型包",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.TryLoadFromDisk(configFilePath)
			if err != nil {
				zap.S().Errorf("读取本地配置文件错误:%s", err.Error())
				return
			}
			if url != "" {
				cfg.ModelConfig.DownloadURL = url
			}
			if modelDir != "" {
				cfg.ModelConfig.ModelDir = modelDir
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				zap.S().Errorf("本地配置文件验证错误:%s", errors.Join(errs...))
				return
			}

			ctx := signals.SetupSignalHandler()

			downloader := service.NewDownloader()
			if err := downloader.Download(ctx, cfg.ModelConfig.DownloadURL, cfg.ModelConfig.ModelDir); err != nil {
				zap.S().Errorf("下载失败:%s", err.Error())
				return
			}
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径")
	cmd.Flags().StringVarP(&url, "url", "u", "", "模型包下载地址，覆盖配置")
	cmd.Flags().StringVarP(&modelDir, "dir", "d", "", "模型目录，覆盖配置")
	return cmd
}
