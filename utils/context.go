package utils

import (
	"context"
	"errors"
	"strings"
)

// IsContextCanceled 检查错误是否是由于上下文取消导致的
func IsContextCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	return strings.Contains(err.Error(), "context canceled")
}

// IsTimeout 检查错误是否是超时
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}
