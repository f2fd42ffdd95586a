package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key, err := GenerateKey()
		require.NoError(t, err)
		require.Len(t, key, 8)
		for _, c := range key {
			assert.True(t, (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'), "unexpected character %q", c)
		}
		seen[key] = true
	}
	// 50개가 전부 같을 확률은 사실상 0이다
	assert.Greater(t, len(seen), 1)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
