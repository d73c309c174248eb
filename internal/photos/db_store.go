package photos

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anoixa/gphotos-grid/database/models"
	"github.com/anoixa/gphotos-grid/database/repo/albums"
)

// DBStore 基于数据库表 album_records 的记录存储
type DBStore struct {
	repo *albums.Repository
}

// NewDBStore 创建数据库存储
func NewDBStore(repo *albums.Repository) *DBStore {
	return &DBStore{repo: repo}
}

func (s *DBStore) Get(ctx context.Context, key string) (*AlbumRecord, error) {
	row, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	if row == nil {
		return nil, ErrRecordNotFound
	}

	record := &AlbumRecord{FetchedAt: row.FetchedAt}
	if err := json.Unmarshal([]byte(row.Photos), &record.Photos); err != nil {
		// 损坏的行当作无效记录，下次刷新时覆盖
		log.Printf("[DBStore] Ignoring malformed photos column for %s: %v", key, err)
		record.Photos = nil
	}
	return record, nil
}

func (s *DBStore) Put(ctx context.Context, key string, record *AlbumRecord) error {
	data, err := json.Marshal(record.Photos)
	if err != nil {
		return fmt.Errorf("encode photos: %w", err)
	}
	return s.repo.Upsert(ctx, &models.AlbumRecord{
		CacheKey:  key,
		FetchedAt: record.FetchedAt,
		Photos:    string(data),
	})
}

func (s *DBStore) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	n, err := s.repo.DeleteByKeyLike(ctx, GlobToLike(pattern))
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", pattern, err)
	}
	return int(n), nil
}

// GlobToLike 将 glob 模式转换为 LIKE 模式（转义符为反斜杠）
// 仅支持 * 和 ?，其余字符按字面处理
func GlobToLike(pattern string) string {
	var sb strings.Builder
	sb.Grow(len(pattern) + 4)
	for _, r := range pattern {
		switch r {
		case '\\', '%', '_':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '*':
			sb.WriteByte('%')
		case '?':
			sb.WriteByte('_')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
