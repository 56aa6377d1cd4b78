package main

import (
	"os"

	"g2pw-converter/cmd"

	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewDevelopment(zap.WithCaller(false))
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
