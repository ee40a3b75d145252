// playchat 会员服务
//
// @title                       playchat API
// @version                     1.0
// @description                 会员注册、登录、资料修改和头像管理
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/playchat/internal/infrastructure/config"
	"github.com/xiebiao/playchat/pkg/logger"
	"github.com/xiebiao/playchat/pkg/metrics"
	"github.com/xiebiao/playchat/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		slog.Error("playchat exited with error", "err", err)
		os.Exit(1)
	}
	slog.Info("playchat exited")
}

func run() error {
	// 1. 配置和日志
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if _, err := logger.Init(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	}); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	slog.Info("配置加载成功",
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"storage", cfg.Storage.Driver,
		"mq", cfg.MQ.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 链路追踪
	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownTracer(shutdownCtx); err != nil {
				slog.Warn("关闭Tracer失败", "err", err)
			}
		}()
	}
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	// 3. 依赖组装
	app, cleanup, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// 4. 启动定时任务、HTTP服务和指标服务，收到信号后优雅退出
	if err := app.jobs.RegisterJobs(); err != nil {
		return fmt.Errorf("注册定时任务失败: %w", err)
	}
	app.jobs.Start()

	g, ctx := errgroup.WithContext(ctx)

	servers := []*http.Server{app.server}
	if app.metricsServer != nil {
		servers = append(servers, app.metricsServer)
	}
	for _, srv := range servers {
		g.Go(func() error {
			slog.Info("HTTP服务启动", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP服务异常退出(%s): %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("开始关闭服务")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		app.jobs.Stop(shutdownCtx)
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP服务关闭失败", "addr", srv.Addr, "err", err)
			}
		}
		return nil
	})

	return g.Wait()
}
