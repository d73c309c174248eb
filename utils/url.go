package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyAlbumURL   = errors.New("album url is empty")
	ErrInvalidAlbumURL = errors.New("album url is invalid")
	ErrHostNotAllowed  = errors.New("album url host is not allowed")
)

// NormalizeAlbumURL 校验相册分享链接：必须是带主机名的 https 绝对地址
// 返回去除首尾空白后的原始字符串，不做其他改写，保证缓存键与调用方一致
func NormalizeAlbumURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyAlbumURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAlbumURL, err)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return "", fmt.Errorf("%w: scheme must be https", ErrInvalidAlbumURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidAlbumURL)
	}
	return raw, nil
}

// CheckAlbumHost 校验链接主机名在允许列表中，仅允许默认端口
// hosts 为空时拒绝所有链接
func CheckAlbumHost(raw string, hosts []string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAlbumURL, err)
	}
	if port := u.Port(); port != "" && port != "443" {
		return fmt.Errorf("%w: port %s", ErrHostNotAllowed, port)
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	for _, allowed := range hosts {
		if host == strings.ToLower(strings.TrimSpace(allowed)) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
}
