package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/gphotos-grid/config"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// StoreChecker 记录存储健康检查
type StoreChecker interface {
	CheckStore(ctx context.Context) error
	StoreName() string
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	store StoreChecker
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(store StoreChecker) *HealthHandler {
	return &HealthHandler{store: store}
}

// Handle 返回服务与存储状态，存储不可用时返回 503
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	storeStatus := "not initialized"
	storeName := ""
	if h.store != nil {
		storeName = h.store.StoreName()
		storeStatus = "ok"
		if err := h.store.CheckStore(ctx); err != nil {
			storeStatus = "unavailable: " + err.Error()
		}
	}

	status, httpStatus := "ok", http.StatusOK
	if storeStatus != "ok" {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks": gin.H{
			"store": gin.H{
				"name":   storeName,
				"status": storeStatus,
			},
		},
	})
}
