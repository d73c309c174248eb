package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

func TestIsContextCanceled(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"direct context.Canceled", context.Canceled, true},
		{"wrapped context.Canceled", fmt.Errorf("fetch album: %w", context.Canceled), true},
		{"message only", errors.New("Get \"https://photos.app.goo.gl/x\": context canceled"), true},
		{"other error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsContextCanceled(tt.err))
		})
	}
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(fmt.Errorf("wrapped: %w", timeoutErr{})))
	assert.False(t, IsTimeout(errors.New("boom")))
}
