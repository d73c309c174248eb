package types

import (
	"encoding/json"
	"errors"
	"path"
	"strings"
)

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// MatchPattern 按 glob 规则（* 与 ?）匹配键，非法模式视为不匹配
func MatchPattern(pattern, key string) bool {
	ok, err := path.Match(pattern, key)
	return err == nil && ok
}

// LiteralPrefix 返回模式中第一个通配符之前的部分，用于前缀列举
func LiteralPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, "*?[\\"); i >= 0 {
		return pattern[:i]
	}
	return pattern
}

// Encode 将值序列化为字节，[]byte 原样返回
func Encode(value interface{}) ([]byte, error) {
	if data, ok := value.([]byte); ok {
		return data, nil
	}
	return json.Marshal(value)
}

// Decode 将字节反序列化到 dest，*[]byte 直接赋值
func Decode(data []byte, dest interface{}) error {
	if byteDest, ok := dest.(*[]byte); ok {
		*byteDest = append((*byteDest)[:0], data...)
		return nil
	}
	return json.Unmarshal(data, dest)
}
