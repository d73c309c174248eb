package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anoixa/gphotos-grid/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nano
}

type IPRateLimiter struct {
	rps        float64       // 每秒请求数
	burst      int           // 令牌桶的容量
	expireTime time.Duration // 过期时间
	limiterMap *sync.Map
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewIPRateLimiter Create new IP-based rate limits
func NewIPRateLimiter(rps float64, burst int, expireTime time.Duration) *IPRateLimiter {
	if expireTime <= 0 {
		expireTime = 10 * time.Minute
	}
	limiter := &IPRateLimiter{
		rps:        rps,
		burst:      burst,
		expireTime: expireTime,
		limiterMap: &sync.Map{},
		stopChan:   make(chan struct{}),
	}

	// 启动后台清理 goroutine
	go limiter.cleanupStaleClients()

	return limiter
}

// Middleware Return a Gin middleware handler
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)

		val, ok := rl.limiterMap.Load(ip)
		if !ok {
			val, _ = rl.limiterMap.LoadOrStore(ip, &clientLimiter{
				limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst),
			})
		}

		client := val.(*clientLimiter)
		client.lastSeen.Store(time.Now().UnixNano())

		if !client.limiter.Allow() {
			c.Header("Retry-After", "1")
			common.RespondErrorAbort(c, http.StatusTooManyRequests, "Too many requests")
			return
		}

		c.Next()
	}
}

func (rl *IPRateLimiter) StopCleanup() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
	})
}

func (rl *IPRateLimiter) cleanupStaleClients() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// 遍历 sync.Map，删除过期的条目
			rl.limiterMap.Range(func(key, value interface{}) bool {
				client := value.(*clientLimiter)
				if time.Since(time.Unix(0, client.lastSeen.Load())) > rl.expireTime {
					rl.limiterMap.Delete(key)
				}
				return true
			})
		case <-rl.stopChan:
			return
		}
	}
}

// getClientIP 客户端 IP，代理头仅在配置了可信代理时生效
func getClientIP(c *gin.Context) string {
	return c.ClientIP()
}
