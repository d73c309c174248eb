package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/gphotos-grid/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

type ConcurrencyLimiter struct {
	sem *semaphore.Weighted
}

// NewConcurrencyLimiter 并发限制器
func NewConcurrencyLimiter(maxConcurrency int64) *ConcurrencyLimiter {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &ConcurrencyLimiter{
		sem: semaphore.NewWeighted(maxConcurrency),
	}
}

// Middleware 立即拒绝超出并发上限的请求
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.sem.TryAcquire(1) {
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
			return
		}

		defer cl.sem.Release(1)

		c.Next()
	}
}

// MiddlewareWithBlock 等待空闲名额，超时后拒绝
// 刷新相册可能阻塞到抓取超时，相册接口使用此模式
func (cl *ConcurrencyLimiter) MiddlewareWithBlock(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		err := cl.sem.Acquire(ctx, 1)
		if err != nil {
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Request timed out waiting for server resources")
			return
		}

		defer cl.sem.Release(1)

		c.Next()
	}
}
