package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/api"
	"github.com/SlpAus/fame-list-backend/internal/admin"
	"github.com/SlpAus/fame-list-backend/internal/complaint"
	"github.com/SlpAus/fame-list-backend/internal/like"
	"github.com/SlpAus/fame-list-backend/internal/listing"
	"github.com/SlpAus/fame-list-backend/internal/platform/database"
	"github.com/SlpAus/fame-list-backend/internal/platform/health"
	"github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/internal/platform/remote"
	"github.com/SlpAus/fame-list-backend/internal/platform/shutdown"
	"github.com/SlpAus/fame-list-backend/internal/platform/startup"
	"github.com/SlpAus/fame-list-backend/internal/profile"
	"github.com/SlpAus/fame-list-backend/internal/session"
	"github.com/SlpAus/fame-list-backend/internal/upload"
	"github.com/SlpAus/fame-list-backend/internal/viewdedup"
	"github.com/SlpAus/fame-list-backend/pkg/lifecycle"
	"github.com/SlpAus/fame-list-backend/pkg/token"
)

const (
	healthCheckInterval = 5 * time.Second
	sessionSweepEvery   = time.Minute
	sessionMaxIdle      = 24 * time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.L()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	signer, generated, err := token.NewSigner(cfg.Server.CookieSecret)
	if err != nil {
		return err
	}
	if generated {
		log.Warn("未配置 server.cookieSecret，使用随机密钥，重启后所有访客身份失效")
	}

	database.InitDB(cfg.Database.Sqlite.Path)
	database.InitRedis(ctx, cfg.Database.Redis)

	// 1. 获取初始Run ID，Redis不可用时以降级模式启动
	checker := health.NewChecker(health.RedisRunID(database.RDB), startup.RebuildCache(database.DB, database.RDB))
	checker.InitializeRunID(ctx)

	// 2. 远程协作者
	client := remote.NewClient(cfg.Remote.Timeout)
	repo := profile.NewHTTPRepository(cfg.Remote.ProfilesURL, client)
	ctrl := listing.NewController(repo)
	uploader, err := upload.New(ctx, cfg, client)
	if err != nil {
		return fmt.Errorf("初始化上传后端失败: %w", err)
	}

	// 3. 迁移、预热和首次加载
	if err := startup.InitializeApplication(ctx, database.DB, database.RDB, ctrl); err != nil {
		return err
	}

	backend := viewdedup.NewLayeredBackend(
		viewdedup.NewRedisBackend(database.RDB),
		viewdedup.NewSQLBackend(database.DB),
		database.IsRedisHealthy,
	)
	sessions := session.NewRegistry()
	flusher := viewdedup.NewFlusher(database.RDB, database.DB, database.IsRedisHealthy)

	gate := admin.NewGate(cfg.Admin.Password)
	if !gate.Enabled() {
		log.Warn("未配置 admin.password，管理入口已禁用")
	}

	// 4. 后台任务
	graceful := lifecycle.NewManager("graceful", log)
	forceful := lifecycle.NewManager("forceful", log)
	tasks := map[string]func(h *lifecycle.Handle){
		"dedup-flusher":   func(h *lifecycle.Handle) { flusher.Run(h, cfg.Dedup.FlushInterval) },
		"health-checker":  func(h *lifecycle.Handle) { checker.Run(h, healthCheckInterval) },
		"session-sweeper": func(h *lifecycle.Handle) { sessions.RunSweeper(h, sessionSweepEvery, sessionMaxIdle) },
	}
	if cfg.Listing.RefreshInterval > 0 {
		tasks["listing-refresher"] = func(h *lifecycle.Handle) { ctrl.RunRefresher(h, cfg.Listing.RefreshInterval) }
	}
	for name, fn := range tasks {
		if err := graceful.Go(name, fn); err != nil {
			return err
		}
	}

	// 5. HTTP
	router := api.NewRouter(cfg.Server)
	api.SetupRoutes(router, api.Deps{
		Signer:   signer,
		Sessions: sessions,
		Listing: listing.NewHandler(ctrl, func(clientID string) listing.ViewTracker {
			return viewdedup.NewTracker(backend.ForClient(clientID))
		}, like.NewToggler(repo)),
		Admin: admin.NewHandler(gate, admin.NewService(repo, uploader, ctrl)),
		Complaints: complaint.NewHandler(
			complaint.NewService(cfg.Remote.ComplaintURL, client),
			complaint.NewLimiter(database.RDB, database.IsRedisHealthy, cfg.Complaint.MaxPerDay),
		),
		Health: api.NewHealthHandler(ctrl, checker, database.DB),
	})

	server := &http.Server{Addr: cfg.Server.Address, Handler: router}
	go func() {
		log.Info("服务器已准备就绪，开始监听", zap.String("addr", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	coordinator := shutdown.NewCoordinator(graceful, forceful,
		func(context.Context) error {
			// 等待后台的浏览计数完成，它们写入的标记需要被最后一次落盘带走
			ctrl.Wait()
			return nil
		},
		func(ctx context.Context) error {
			if !database.IsRedisHealthy() {
				return nil
			}
			n, err := flusher.Flush(ctx)
			if err == nil {
				log.Info("最终落盘成功", zap.Int("clients", n))
			}
			return err
		},
	)
	coordinator.ListenForSignalsAndShutdown(server)
	return nil
}
