package admin

import (
	"context"
	"log"
	"net/http"

	"github.com/anoixa/gphotos-grid/api/common"
	"github.com/anoixa/gphotos-grid/internal/metrics"
	"github.com/anoixa/gphotos-grid/internal/photos"
	"github.com/gin-gonic/gin"
)

// Resetter 批量删除相册记录
type Resetter interface {
	Reset(ctx context.Context) (int, error)
	Stats() photos.Stats
}

// CacheHandler 相册记录缓存管理处理器
type CacheHandler struct {
	manager Resetter
	latency *metrics.LatencyTracker
}

// NewCacheHandler 创建缓存管理处理器，latency 可为 nil
func NewCacheHandler(manager Resetter, latency *metrics.LatencyTracker) *CacheHandler {
	return &CacheHandler{manager: manager, latency: latency}
}

// ClearCache 删除所有相册记录
// @Summary      Clear album records
// @Description  Delete every cached album record, next request refetches from the album page
// @Tags         admin
// @Produce      json
// @Success      200  {object}  common.Response  "Deleted count"
// @Failure      401  {object}  common.Response  "Unauthorized"
// @Failure      500  {object}  common.Response  "Internal server error"
// @Security     BearerAuth
// @Router       /api/v1/admin/cache [delete]
func (h *CacheHandler) ClearCache(c *gin.Context) {
	deleted, err := h.manager.Reset(c.Request.Context())
	if err != nil {
		log.Printf("[Admin] Cache reset failed: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to clear album records")
		return
	}

	common.RespondSuccessMessage(c, "Album records cleared", gin.H{
		"deleted": deleted,
	})
}

// GetStats 获取命中与刷新计数以及抓取、存储延迟
// @Summary      Album cache statistics
// @Tags         admin
// @Produce      json
// @Success      200  {object}  common.Response  "Counters and latency quantiles"
// @Security     BearerAuth
// @Router       /api/v1/admin/cache/stats [get]
func (h *CacheHandler) GetStats(c *gin.Context) {
	common.RespondSuccess(c, gin.H{
		"albums":  h.manager.Stats(),
		"latency": h.latency.GetAllStats(),
	})
}
