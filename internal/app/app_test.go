package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anoixa/gphotos-grid/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreType:           StoreTypeCache,
		CacheType:           "gocache",
		FetchTimeout:        time.Second,
		FetchMaxBodyMB:      1,
		CacheFailures:       true,
		RefreshSingleFlight: true,
	}
}

func TestContainer_CacheStore(t *testing.T) {
	c := NewContainer(testConfig())
	require.NoError(t, c.Init())
	defer c.Close()

	assert.NotNil(t, c.Manager())
	assert.Nil(t, c.JWTService())
	assert.Equal(t, "cache:gocache", c.StoreName())
	assert.NoError(t, c.CheckStore(context.Background()))
}

func TestContainer_DatabaseStore(t *testing.T) {
	cfg := testConfig()
	cfg.StoreType = StoreTypeDatabase
	cfg.DBType = "sqlite"
	cfg.DBFilePath = filepath.Join(t.TempDir(), "gphotos.db")

	c := NewContainer(cfg)
	require.NoError(t, c.Init())
	defer c.Close()

	assert.Equal(t, "database:sqlite", c.StoreName())
	assert.NoError(t, c.CheckStore(context.Background()))

	deleted, err := c.Manager().Reset(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestContainer_AdminAuth(t *testing.T) {
	cfg := testConfig()
	cfg.AdminJWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.AdminTokenTTL = time.Hour

	c := NewContainer(cfg)
	require.NoError(t, c.Init())
	defer c.Close()
	assert.NotNil(t, c.JWTService())

	short := testConfig()
	short.AdminJWTSecret = "short"
	assert.Error(t, NewContainer(short).Init())
}

func TestContainer_UnsupportedStore(t *testing.T) {
	cfg := testConfig()
	cfg.StoreType = "filesystem"
	assert.Error(t, NewContainer(cfg).Init())
}
