package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecret 生成 URL 安全的随机密钥（无填充），用于管理接口的 JWT 签名密钥
func GenerateSecret(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
