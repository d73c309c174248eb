package utils

import (
	"strings"
	"unicode"
)

// maxLoggedURLLength 日志中 URL 的最大长度
const maxLoggedURLLength = 120

func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == 10 || r == 9 {
			sb.WriteRune(r)
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogURL 清理并截断 URL，相册地址来自请求参数，不能原样写入日志
func SanitizeLogURL(rawURL string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, SanitizeLogMessage(rawURL))
	if len(cleaned) > maxLoggedURLLength {
		cleaned = cleaned[:maxLoggedURLLength] + "..."
	}
	return cleaned
}
