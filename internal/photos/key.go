package photos

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/anoixa/gphotos-grid/cache"
)

// DeriveKey 由相册 URL 派生存储键: "gphotos_album:" + URL 的 MD5 小写十六进制
func DeriveKey(albumURL string) string {
	sum := md5.Sum([]byte(albumURL))
	return cache.Album.Build(hex.EncodeToString(sum[:]))
}

// KeyPattern 匹配所有相册记录的键模式
func KeyPattern() string {
	return cache.Album.Pattern()
}
