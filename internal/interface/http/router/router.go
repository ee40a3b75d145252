package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/playchat/internal/infrastructure/config"
	"github.com/xiebiao/playchat/internal/interface/http/handler"
	"github.com/xiebiao/playchat/internal/interface/http/middleware"
	"github.com/xiebiao/playchat/internal/interface/http/validation"
	"github.com/xiebiao/playchat/pkg/metrics"
)

// NewRouter 创建Gin引擎并注册所有路由
//
// 路由：
//
//	GET  /ping                                  健康检查
//	GET  /images/*filepath                      默认头像等静态资源
//	GET  /swagger/*any                          API文档（release模式不开启）
//	GET  /metrics                               Prometheus指标（metrics.port为0时）
//	POST /api/members/sign-up                   注册
//	POST /api/members/login                     登录
//	POST /api/members/token/refresh             刷新Token
//	POST /api/members/logout                    登出            需要登录
//	GET  /api/members/me                        我的信息        需要登录
//	GET  /api/members/list                      会员列表        需要登录
//	GET  /api/members/:id                       会员信息        需要登录
//	POST|PATCH /api/members/:id/update          修改资料        需要登录
//	GET  /api/members/profile-image/:filename   头像文件        需要登录
func NewRouter(cfg *config.Config, memberHandler *handler.MemberHandler, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode, gin.DebugMode:
		gin.SetMode(cfg.Server.Mode)
	}
	validation.Register()

	r := gin.New()
	r.MaxMultipartMemory = cfg.Storage.MaxUploadSize + 1<<20
	r.Use(middleware.Recovery(), middleware.RequestLogger())
	if cfg.CORS.Enabled {
		r.Use(middleware.CORS(cfg.CORS))
	}
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing())
	}
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}
	r.NoRoute(middleware.NotFound())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "healthy"})
	})
	r.Static("/images", cfg.Storage.StaticDir)

	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	members := r.Group("/api/members")
	{
		members.POST("/sign-up", memberHandler.SignUp)
		members.POST("/login", memberHandler.Login)
		members.POST("/token/refresh", memberHandler.Refresh)

		authorized := members.Group("")
		authorized.Use(auth.RequireAuth())
		{
			authorized.POST("/logout", memberHandler.Logout)
			authorized.GET("/me", memberHandler.Me)
			authorized.GET("/list", memberHandler.List)
			authorized.GET("/profile-image/:filename", memberHandler.ProfileImage)
			authorized.GET("/:id", memberHandler.GetByID)
			authorized.POST("/:id/update", memberHandler.UpdateProfile)
			authorized.PATCH("/:id/update", memberHandler.UpdateProfile)
		}
	}

	return r
}
