package cache

import "strings"

// KeyBuilder 缓存键构建器
type KeyBuilder struct {
	prefix string
	sep    string
}

// NewKeyBuilder 创建新的键构建器
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: prefix,
		sep:    ":",
	}
}

// Build 构建缓存键
func (kb *KeyBuilder) Build(parts ...string) string {
	if len(parts) == 0 {
		return kb.prefix
	}
	return kb.prefix + kb.sep + strings.Join(parts, kb.sep)
}

// Pattern 返回匹配该命名空间下所有键的模式
func (kb *KeyBuilder) Pattern() string {
	return kb.prefix + kb.sep + "*"
}

// Album 相册照片列表缓存
var Album = NewKeyBuilder("gphotos_album")
