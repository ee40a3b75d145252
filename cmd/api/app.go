package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	appmember "github.com/xiebiao/playchat/internal/application/member"
	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/internal/infrastructure/config"
	"github.com/xiebiao/playchat/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/playchat/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/playchat/internal/infrastructure/storage"
	"github.com/xiebiao/playchat/internal/interface/http/handler"
	"github.com/xiebiao/playchat/internal/interface/http/middleware"
	"github.com/xiebiao/playchat/internal/interface/http/router"
	"github.com/xiebiao/playchat/internal/job"
	"github.com/xiebiao/playchat/pkg/jwt"
	"github.com/xiebiao/playchat/pkg/metrics"
	"github.com/xiebiao/playchat/pkg/mq"
)

// app 运行时需要启动和关闭的组件
type app struct {
	server        *http.Server
	metricsServer *http.Server // metrics.port为0时为nil
	jobs          *job.Manager
}

// eventPublisher 应用层发布事件，退出时关闭连接
type eventPublisher interface {
	appmember.EventPublisher
	Close() error
}

// buildApp 手动依赖注入
// 依赖链：Repository ← Service ← UseCase ← Handler ← Router
// 返回的cleanup按创建的逆序释放连接
func buildApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*app, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// 基础设施层
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	redisClient, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	publisher, err := providePublisher(cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() { _ = publisher.Close() })

	fileStore, err := storage.NewFileStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	memberRepo := mysql.NewMemberRepository(db)
	txManager := mysql.NewTxManager(db)
	blacklist := provideTokenBlacklist(redisClient)
	jwtManager := provideJWTManager(cfg)

	// 领域层
	memberService := member.NewService(memberRepo)

	// 应用层
	images := appmember.NewProfileImageService(fileStore, provideImageProcessor(cfg), cfg)
	memberHandler := handler.NewMemberHandler(
		appmember.NewSignUpUseCase(memberService, images, publisher),
		appmember.NewLoginUseCase(memberService, jwtManager),
		appmember.NewRefreshTokenUseCase(jwtManager),
		appmember.NewLogoutUseCase(blacklist),
		appmember.NewGetMemberUseCase(memberService),
		appmember.NewUpdateProfileUseCase(memberService, images, txManager, publisher),
		images,
	)

	// 接口层
	engine := router.NewRouter(cfg, memberHandler, middleware.NewAuthMiddleware(jwtManager, blacklist))
	jobs := job.NewManager(job.NewImageCleanupJob(memberRepo, images, cfg.Job.ImageMinAge), cfg.Job.ImageCleanupSpec)

	return newApp(cfg, engine, jobs), cleanup, nil
}

func newApp(cfg *config.Config, engine *gin.Engine, jobs *job.Manager) *app {
	a := &app{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		jobs: jobs,
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Port != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		a.metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
	}
	return a
}

// =========================================
// 需要从配置中提取参数的Provider
// =========================================

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideTokenBlacklist(client *goredis.Client) *redis.TokenBlacklist {
	return redis.NewTokenBlacklist(client)
}

func provideImageProcessor(cfg *config.Config) member.ImageProcessor {
	return storage.NewImageNormalizer(cfg.Storage.MaxImageDimension, cfg.Storage.MaxImagePixels)
}

// providePublisher 未启用消息队列时使用NopPublisher
func providePublisher(cfg *config.Config) (eventPublisher, error) {
	if !cfg.MQ.Enabled {
		return mq.NopPublisher{}, nil
	}
	p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, err
	}
	slog.Info("会员事件发布已启用", "exchange", cfg.MQ.Exchange)
	return p, nil
}
