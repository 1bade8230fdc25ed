package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^TI-20250301-[A-HJ-NP-Z2-9]{6}$`)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		n, err := GenerateOrderNumber(now)
		require.NoError(t, err)
		assert.Regexp(t, pattern, n)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 190)
}
