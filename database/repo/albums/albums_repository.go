package albums

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/gphotos-grid/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 相册记录仓库 - 封装 album_records 表的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的相册记录仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByKey 按缓存键获取记录，不存在返回 nil, nil
func (r *Repository) GetByKey(ctx context.Context, key string) (*models.AlbumRecord, error) {
	var record models.AlbumRecord
	err := r.db.WithContext(ctx).Where("cache_key = ?", key).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Upsert 整条写入记录，已存在时覆盖抓取时间和照片列表
func (r *Repository) Upsert(ctx context.Context, record *models.AlbumRecord) error {
	record.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"fetched_at", "photos", "updated_at"}),
	}).Create(record).Error
}

// DeleteByKeyLike 删除缓存键匹配 LIKE 模式的记录（转义符为反斜杠）
func (r *Repository) DeleteByKeyLike(ctx context.Context, like string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("cache_key LIKE ? ESCAPE '\\'", like).
		Delete(&models.AlbumRecord{})
	return result.RowsAffected, result.Error
}
