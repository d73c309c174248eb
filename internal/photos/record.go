package photos

import (
	"errors"
	"time"
)

// ErrRecordNotFound 存储中没有该键的记录
var ErrRecordNotFound = errors.New("album record not found")

// AlbumRecord 一次抓取的结果
// Photos 为 nil 表示记录无效，空切片是合法的"相册无照片"结果
type AlbumRecord struct {
	FetchedAt int64    `json:"fetched_at"`
	Photos    []string `json:"photos"`
}

// Valid 记录是否可用于命中判断
func (r *AlbumRecord) Valid() bool {
	return r != nil && r.Photos != nil
}

// FreshAt 在 now 时刻，TTL 为 ttlMinutes 分钟时记录是否仍然新鲜
// 恰好到达 FetchedAt+ttl 时视为过期
func (r *AlbumRecord) FreshAt(now time.Time, ttlMinutes int) bool {
	return r.FetchedAt+int64(ttlMinutes)*60 > now.Unix()
}
