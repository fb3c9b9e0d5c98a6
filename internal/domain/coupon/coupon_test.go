package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		code := NewCode()
		require.Len(t, code, 9)
		for _, r := range code {
			assert.True(t, (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
				"unexpected character %q in code %s", r, code)
		}
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 100, "codes must not repeat")
}
