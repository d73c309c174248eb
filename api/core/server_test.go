package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/gphotos-grid/config"
	"github.com/anoixa/gphotos-grid/internal/auth"
	"github.com/anoixa/gphotos-grid/internal/metrics"
	"github.com/anoixa/gphotos-grid/internal/photos"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAlbum = "https://photos.app.goo.gl/AbCdEf123"

type stubManager struct {
	photos []string
	resets int
}

func (m *stubManager) GetPhotos(ctx context.Context, albumURL string, ttlMinutes int) []string {
	return m.photos
}

func (m *stubManager) Reset(ctx context.Context) (int, error) {
	m.resets++
	return 2, nil
}

func (m *stubManager) Stats() photos.Stats {
	return photos.Stats{Hits: 1}
}

type stubStore struct {
	err error
}

func (s stubStore) CheckStore(ctx context.Context) error { return s.err }
func (s stubStore) StoreName() string                    { return "cache:gocache" }

func newTestDeps(t *testing.T, jwtService *auth.JWTService, storeErr error) (*RouterDependencies, *stubManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := &stubManager{photos: []string{"u1", "u2", "u3", "u4", "u5"}}
	return &RouterDependencies{
		Config: &config.Config{
			ServerPort:           8080,
			AlbumURL:             testAlbum,
			AlbumCacheTTLMinutes: 15,
			AlbumMaxPhotos:       4,
			FetchTimeout:         time.Second,
			MaxConcurrency:       10,
		},
		Manager:    manager,
		JWTService: jwtService,
		Requests:   &metrics.RequestCounters{},
		Latency:    metrics.NewLatencyTracker(0.01),
		Health:     NewHealthHandler(stubStore{err: storeErr}),
	}, manager
}

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	deps, _ := newTestDeps(t, nil, nil)
	router := setupRouter(deps)

	w := serve(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), "cache:gocache")
}

func TestHealthCheck_StoreDown(t *testing.T) {
	deps, _ := newTestDeps(t, nil, errors.New("connection refused"))
	router := setupRouter(deps)

	w := serve(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestPhotosRoute(t *testing.T) {
	deps, _ := newTestDeps(t, nil, nil)
	router := setupRouter(deps)

	w := serve(router, http.MethodGet, "/api/v1/photos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"count":4`)
}

func TestMetricsRoute(t *testing.T) {
	deps, _ := newTestDeps(t, nil, nil)
	router := setupRouter(deps)

	serve(router, http.MethodGet, "/api/v1/photos", nil)
	w := serve(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"request_count":1`)
	assert.NotContains(t, w.Body.String(), `"hits"`)
	assert.NotContains(t, w.Body.String(), `"latency"`)
}

func TestVersionRoute(t *testing.T) {
	deps, _ := newTestDeps(t, nil, nil)
	router := setupRouter(deps)

	w := serve(router, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), config.Version)
}

func TestAdminRoutes_DisabledWithoutSecret(t *testing.T) {
	deps, manager := newTestDeps(t, nil, nil)
	router := setupRouter(deps)

	w := serve(router, http.MethodDelete, "/api/v1/admin/cache", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, manager.resets)
}

func TestAdminRoutes_ClearCache(t *testing.T) {
	svc, err := auth.NewJWTService("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	token, _, err := svc.GenerateAdminToken("ops")
	require.NoError(t, err)

	deps, manager := newTestDeps(t, svc, nil)
	router := setupRouter(deps)

	w := serve(router, http.MethodDelete, "/api/v1/admin/cache", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, http.MethodDelete, "/api/v1/admin/cache", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":2`)
	assert.Equal(t, 1, manager.resets)
}

func TestAdminRoutes_StatsAndTTLOverride(t *testing.T) {
	svc, err := auth.NewJWTService("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	token, _, err := svc.GenerateAdminToken("ops")
	require.NoError(t, err)
	bearer := http.Header{"Authorization": {"Bearer " + token}}

	deps, _ := newTestDeps(t, svc, nil)
	router := setupRouter(deps)

	w := serve(router, http.MethodGet, "/api/v1/admin/cache/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, http.MethodGet, "/api/v1/admin/cache/stats", bearer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hits":1`)

	w = serve(router, http.MethodGet, "/api/v1/photos?ttl=0", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, http.MethodGet, "/api/v1/admin/photos?ttl=0", bearer)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ttl_minutes":0`)
}

func TestPhotosRoute_RejectsForeignHost(t *testing.T) {
	deps, _ := newTestDeps(t, nil, nil)
	deps.Config.AlbumAllowedHosts = []string{"photos.app.goo.gl", "photos.google.com"}
	router := setupRouter(deps)

	w := serve(router, http.MethodGet, "/api/v1/photos?album_url=https://169.254.169.254/latest/meta-data/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
