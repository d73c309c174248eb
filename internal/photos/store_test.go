package photos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/anoixa/gphotos-grid/cache"
	"github.com/anoixa/gphotos-grid/cache/gocache"
	"github.com/anoixa/gphotos-grid/cache/memory"
	"github.com/anoixa/gphotos-grid/database"
	"github.com/anoixa/gphotos-grid/database/models"
	"github.com/anoixa/gphotos-grid/database/repo/albums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newDBStore(t *testing.T) (*DBStore, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return NewDBStore(albums.NewRepository(db)), db
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	mem, err := memory.NewMemory(memory.Config{NumCounters: 1000, MaxCost: 1 << 20})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	dbStore, _ := newDBStore(t)
	return map[string]Store{
		"memory":   NewCacheStore(mem),
		"gocache":  NewCacheStore(gocache.NewGoCache(time.Minute)),
		"database": dbStore,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := DeriveKey(testAlbum)

			_, err := store.Get(ctx, key)
			assert.ErrorIs(t, err, ErrRecordNotFound)

			require.NoError(t, store.Put(ctx, key, &AlbumRecord{FetchedAt: 10, Photos: []string{"u1", "u2"}}))
			record, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, int64(10), record.FetchedAt)
			assert.Equal(t, []string{"u1", "u2"}, record.Photos)

			require.NoError(t, store.Put(ctx, key, &AlbumRecord{FetchedAt: 20, Photos: []string{}}))
			record, err = store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, int64(20), record.FetchedAt)
			assert.NotNil(t, record.Photos)
			assert.Empty(t, record.Photos)
		})
	}
}

func TestStore_DeleteMatching(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, u := range []string{"a", "b", "c"} {
				require.NoError(t, store.Put(ctx, DeriveKey(u), &AlbumRecord{FetchedAt: 1, Photos: []string{u}}))
			}
			require.NoError(t, store.Put(ctx, "gphotosXalbum:keep", &AlbumRecord{FetchedAt: 1, Photos: []string{}}))

			deleted, err := store.DeleteMatching(ctx, KeyPattern())
			require.NoError(t, err)
			assert.Equal(t, 3, deleted)

			_, err = store.Get(ctx, DeriveKey("a"))
			assert.ErrorIs(t, err, ErrRecordNotFound)
			_, err = store.Get(ctx, "gphotosXalbum:keep")
			assert.NoError(t, err)
		})
	}
}

func TestDBStore_MalformedRowIsInvalid(t *testing.T) {
	store, db := newDBStore(t)
	ctx := context.Background()
	key := DeriveKey(testAlbum)

	require.NoError(t, db.Create(&models.AlbumRecord{CacheKey: key, FetchedAt: 5, Photos: "{broken"}).Error)

	record, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, record.Valid())
}

type plainProvider struct {
	cache.Provider
}

func TestCacheStore_DeleteMatchingUnsupported(t *testing.T) {
	store := NewCacheStore(plainProvider{Provider: gocache.NewGoCache(time.Minute)})
	_, err := store.DeleteMatching(context.Background(), KeyPattern())
	assert.Error(t, err)
}

func TestGlobToLike(t *testing.T) {
	tests := []struct {
		glob string
		like string
	}{
		{"gphotos_album:*", `gphotos\_album:%`},
		{"a?c", "a_c"},
		{`100%\done`, `100\%\\done`},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.like, GlobToLike(tt.glob), tt.glob)
	}
}
