package auth_test

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	auth "github.com/softyse/unilink-auth"
)

var resetCodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func TestGenerateResetCode(t *testing.T) {
	t.Run("codes are 6-digit decimals without leading zero", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			code := auth.GenerateResetCode()
			assert.Regexp(t, resetCodePattern, code)
		}
	})

	t.Run("codes stay within [100000, 999999]", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			n, err := strconv.Atoi(auth.GenerateResetCode())
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, n, 100000)
			assert.LessOrEqual(t, n, 999999)
		}
	})
}

func TestIsValidResetCode(t *testing.T) {
	t.Run("accepts boundary values", func(t *testing.T) {
		assert.True(t, auth.IsValidResetCode("100000"))
		assert.True(t, auth.IsValidResetCode("999999"))
	})

	t.Run("rejects out-of-range and malformed input", func(t *testing.T) {
		assert.False(t, auth.IsValidResetCode("099999"))
		assert.False(t, auth.IsValidResetCode("1000000"))
		assert.False(t, auth.IsValidResetCode("12345"))
		assert.False(t, auth.IsValidResetCode("abc123"))
		assert.False(t, auth.IsValidResetCode(""))
	})
}
