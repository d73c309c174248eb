package core

import (
	"net/http"

	"github.com/anoixa/gphotos-grid/api/common"
	"github.com/anoixa/gphotos-grid/api/handler/admin"
	handlerPhotos "github.com/anoixa/gphotos-grid/api/handler/photos"
	"github.com/anoixa/gphotos-grid/api/middleware"
	"github.com/anoixa/gphotos-grid/config"
	"github.com/anoixa/gphotos-grid/internal/auth"
	"github.com/anoixa/gphotos-grid/internal/metrics"
	"github.com/gin-gonic/gin"
)

// PhotoManager 路由所需的相册管理能力
type PhotoManager interface {
	handlerPhotos.Source
	admin.Resetter
}

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Config         *config.Config
	Manager        PhotoManager
	JWTService     *auth.JWTService
	APIRateLimiter *middleware.IPRateLimiter
	Requests       *metrics.RequestCounters
	Latency        *metrics.LatencyTracker
	Health         *HealthHandler
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	registerBasicRoutes(router, deps)
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	router.GET("/health", deps.Health.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	// 相册与延迟统计仅通过管理接口暴露
	router.GET("/metrics", func(context *gin.Context) {
		context.JSON(http.StatusOK, gin.H{
			"requests": deps.Requests.Snapshot(),
		})
	})
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	cfg := deps.Config
	photoHandler := handlerPhotos.NewHandler(deps.Manager, photoDefaults(cfg))

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) {
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		v1 := apiGroup.Group("/v1")
		if deps.APIRateLimiter != nil {
			v1.Use(deps.APIRateLimiter.Middleware())
		}
		{
			v1.GET("/photos", photoHandler.GetPhotos) // GET /api/v1/photos

			registerAdminRoutes(v1, deps)
		}
	}
}

// registerAdminRoutes 仅在配置了管理密钥时注册
func registerAdminRoutes(v1 *gin.RouterGroup, deps *RouterDependencies) {
	if deps.JWTService == nil {
		return
	}

	cacheHandler := admin.NewCacheHandler(deps.Manager, deps.Latency)
	photoHandler := handlerPhotos.NewAdminHandler(deps.Manager, photoDefaults(deps.Config))
	adminGroup := v1.Group("/admin")
	adminGroup.Use(middleware.AdminAuth(deps.JWTService))
	{
		adminGroup.GET("/photos", photoHandler.GetPhotos)     // GET /api/v1/admin/photos
		adminGroup.DELETE("/cache", cacheHandler.ClearCache)  // DELETE /api/v1/admin/cache
		adminGroup.GET("/cache/stats", cacheHandler.GetStats) // GET /api/v1/admin/cache/stats
	}
}

func photoDefaults(cfg *config.Config) handlerPhotos.Defaults {
	return handlerPhotos.Defaults{
		AlbumURL:     cfg.AlbumURL,
		TTLMinutes:   cfg.AlbumCacheTTLMinutes,
		MaxPhotos:    cfg.AlbumMaxPhotos,
		AllowedHosts: cfg.AlbumAllowedHosts,
	}
}
