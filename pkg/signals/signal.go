package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var onlyOneSignalHandler = make(chan struct{})

// SetupSignalHandler 注册 SIGTERM/SIGINT 信号处理，返回可取消的上下文
// 第一次收到信号取消上下文，第二次收到信号直接退出
func SetupSignalHandler() context.Context {
	close(onlyOneSignalHandler) // 重复调用直接 panic

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		zap.S().Info("收到退出信号，正在停止...")
		cancel()
		<-c
		os.Exit(1)
	}()

	return ctx
}
