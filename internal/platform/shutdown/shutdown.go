package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/pkg/lifecycle"
)

const (
	httpTimeout     = 15 * time.Second
	gracefulTimeout = 30 * time.Second
	forcefulTimeout = 1 * time.Second
)

// FinalStep 在所有后台任务停止后执行，例如最后一次落盘
type FinalStep func(ctx context.Context) error

// Coordinator 负责编排应用程序的优雅停机流程
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager
	finalSteps      []FinalStep
}

func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager, final ...FinalStep) *Coordinator {
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
		finalSteps:      final,
	}
}

// ListenForSignalsAndShutdown 阻塞直到收到 SIGINT/SIGTERM，然后执行停机
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	applog.L().Info("收到关闭信号，开始优雅停机...", zap.String("signal", sig.String()))
	c.Shutdown(server)
}

// Shutdown 依次关闭HTTP服务器、停止后台任务、执行最终步骤
func (c *Coordinator) Shutdown(server *http.Server) {
	log := applog.L()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("HTTP服务器关闭错误", zap.Error(err))
		} else {
			log.Info("HTTP服务器已关闭")
		}
	}

	// --- 阶段一: 优雅停机 ---
	log.Info("第一阶段停机：等待后台任务完成", zap.Duration("timeout", gracefulTimeout))
	c.GracefulManager.Shutdown()
	remaining := c.GracefulManager.WaitWithTimeout(gracefulTimeout)
	if len(remaining) == 0 {
		log.Info("所有任务已在第一阶段优雅关闭")
	} else {
		// --- 阶段二: 强制停机 ---
		log.Warn("第一阶段超时，发送第二停机信号", zap.Strings("remaining", remaining))
		c.ForcefulManager.Shutdown()
		c.ForcefulManager.WaitWithTimeout(forcefulTimeout)
	}

	// --- 最终步骤 ---
	for _, step := range c.finalSteps {
		if err := step(context.Background()); err != nil {
			log.Error("停机最终步骤失败", zap.Error(err))
		}
	}
	log.Info("优雅停机完成")
}
