package middleware

import (
	"time"

	"github.com/anoixa/gphotos-grid/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics 基础监控指标中间件
func Metrics(counters *metrics.RequestCounters) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		counters.Observe(c.Writer.Status(), time.Since(startTime))
	}
}
