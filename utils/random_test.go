package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateSecret_Length 编码后长度足以满足管理密钥的最小要求
func TestGenerateSecret_Length(t *testing.T) {
	secret, err := GenerateSecret(32)
	require.NoError(t, err)
	assert.Len(t, secret, 43)
	assert.Regexp(t, "^[A-Za-z0-9_-]+$", secret)
}

func TestGenerateSecret_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		secret, err := GenerateSecret(32)
		require.NoError(t, err)
		assert.False(t, seen[secret], "duplicate secret generated")
		seen[secret] = true
	}
}

func TestGenerateSecret_Empty(t *testing.T) {
	secret, err := GenerateSecret(0)
	require.NoError(t, err)
	assert.Empty(t, secret)
}
