package core

import (
	"net/http"
	"time"

	"github.com/anoixa/gphotos-grid/api/middleware"
	"github.com/anoixa/gphotos-grid/config"
	"github.com/anoixa/gphotos-grid/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// setupRouter 创建 gin 引擎并挂载全局中间件
func setupRouter(deps *RouterDependencies) *gin.Engine {
	cfg := deps.Config

	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 仅在开发版本时启用 gin 日志
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.BaseURL()},
		AllowMethods: []string{"GET", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)

	// 刷新可能阻塞到抓取超时，等待名额的上限与之一致
	concurrencyLimiter := middleware.NewConcurrencyLimiter(cfg.MaxConcurrency)
	router.Use(concurrencyLimiter.MiddlewareWithBlock(cfg.FetchTimeout))

	// 请求ID追踪
	router.Use(middleware.RequestID())

	// 基础监控指标
	router.Use(middleware.Metrics(deps.Requests))

	RegisterRoutes(router, deps)
	return router
}

// StartServer 创建 http.Server，返回的清理函数停止限流器后台任务
func StartServer(container *app.Container) (*http.Server, func()) {
	cfg := container.GetConfig()

	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	router := setupRouter(&RouterDependencies{
		Config:         cfg,
		Manager:        container.Manager(),
		JWTService:     container.JWTService(),
		APIRateLimiter: apiRateLimiter,
		Requests:       container.Requests(),
		Latency:        container.Latency(),
		Health:         NewHealthHandler(container),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, apiRateLimiter.StopCleanup
}
