//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 生成：wire gen ./cmd/api
// wire_gen.go生成后可以用InitializeApp替换main.go中的buildApp

package main

import (
	"context"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

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
)

// infrastructureSet 连接类依赖，cleanup由Wire按逆序串联
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedisClient,
	providePublisherWithCleanup,
	storage.NewFileStore,
	provideImageProcessor,
	provideJWTManager,
	provideTokenBlacklist,
	wire.Bind(new(appmember.EventPublisher), new(eventPublisher)),
	wire.Bind(new(appmember.TokenBlacklist), new(*redis.TokenBlacklist)),
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.TokenBlacklist)),
)

var repositorySet = wire.NewSet(
	mysql.NewMemberRepository,
	mysql.NewTxManager,
	wire.Bind(new(appmember.Transactor), new(*mysql.TxManager)),
)

var domainSet = wire.NewSet(
	provideMemberService,
)

var applicationSet = wire.NewSet(
	appmember.NewProfileImageService,
	appmember.NewSignUpUseCase,
	appmember.NewLoginUseCase,
	appmember.NewRefreshTokenUseCase,
	appmember.NewLogoutUseCase,
	appmember.NewGetMemberUseCase,
	appmember.NewUpdateProfileUseCase,
)

var interfaceSet = wire.NewSet(
	handler.NewMemberHandler,
	middleware.NewAuthMiddleware,
	router.NewRouter,
)

var jobSet = wire.NewSet(
	provideImageCleanupJob,
	provideJobManager,
)

// InitializeApp 组装完整应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		jobSet,
		newApp,
	)
	return nil, nil, nil
}

func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

func provideRedisClient(ctx context.Context, cfg *config.Config) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func providePublisherWithCleanup(cfg *config.Config) (eventPublisher, func(), error) {
	p, err := providePublisher(cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, func() { _ = p.Close() }, nil
}

// provideMemberService member.NewService的选项参数Wire无法注入
func provideMemberService(repo member.Repository) member.Service {
	return member.NewService(repo)
}

func provideImageCleanupJob(cfg *config.Config, repo member.Repository, images *appmember.ProfileImageService) *job.ImageCleanupJob {
	return job.NewImageCleanupJob(repo, images, cfg.Job.ImageMinAge)
}

func provideJobManager(cfg *config.Config, cleanup *job.ImageCleanupJob) *job.Manager {
	return job.NewManager(cleanup, cfg.Job.ImageCleanupSpec)
}
