package models

import "time"

// AlbumRecord 相册照片列表缓存记录，每个相册 URL 一行
type AlbumRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// CacheKey 由相册 URL 派生，如 "gphotos_album:<md5>"
	CacheKey  string `gorm:"type:varchar(191);uniqueIndex;not null" json:"cache_key"`
	FetchedAt int64  `gorm:"not null" json:"fetched_at"`
	// Photos JSON 数组文本，保持抓取顺序
	Photos string `gorm:"type:text;not null" json:"photos"`
}

// TableName 指定表名
func (AlbumRecord) TableName() string {
	return "album_records"
}
