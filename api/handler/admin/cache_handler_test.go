package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/gphotos-grid/internal/metrics"
	"github.com/anoixa/gphotos-grid/internal/photos"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubResetter struct {
	deleted int
	err     error
	stats   photos.Stats
}

func (s *stubResetter) Reset(ctx context.Context) (int, error) {
	return s.deleted, s.err
}

func (s *stubResetter) Stats() photos.Stats {
	return s.stats
}

func setupTestRouter(r Resetter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	latency := metrics.NewLatencyTracker(0.01)
	latency.Record("fetch", 120*time.Millisecond)
	h := NewCacheHandler(r, latency)
	router.DELETE("/cache", h.ClearCache)
	router.GET("/cache/stats", h.GetStats)
	return router
}

func TestClearCache(t *testing.T) {
	router := setupTestRouter(&stubResetter{deleted: 3})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cache", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":3`)
}

func TestClearCache_Failure(t *testing.T) {
	router := setupTestRouter(&stubResetter{err: errors.New("redis down")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cache", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis down")
}

func TestGetStats(t *testing.T) {
	router := setupTestRouter(&stubResetter{stats: photos.Stats{Hits: 7, Misses: 2}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cache/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hits":7`)
	assert.Contains(t, w.Body.String(), `"misses":2`)
	assert.Contains(t, w.Body.String(), `"operation":"fetch"`)
}
