package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the fixed claim set embedded in access and refresh
// tokens: identity fields plus the registered iat/exp/jti claims. The
// shape is validated at decode time; loose map payloads are never
// trusted.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID          int64    `json:"uid"`
	UserEmail    string   `json:"email"`
	UserRole     UserRole `json:"role"`
	UserVerified bool     `json:"is_verified"`
}

// UserID returns the user's numeric id
func (c *TokenClaims) UserID() int64 {
	return c.UID
}

// Email returns the email claim
func (c *TokenClaims) Email() string {
	return c.UserEmail
}

// Role returns the role claim
func (c *TokenClaims) Role() string {
	return string(c.UserRole)
}

// IsVerified returns the verification flag as of token issuance. Stale
// once the user verifies or a role changes; holders keep the old view
// until the token expires or is refreshed.
func (c *TokenClaims) IsVerified() bool {
	return c.UserVerified
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// requireIdentity rejects claim sets missing the fields every guarded
// request depends on.
func (c *TokenClaims) requireIdentity() error {
	if c.UserEmail == "" || c.UserRole == "" {
		return ErrTokenMalformed
	}
	return nil
}
