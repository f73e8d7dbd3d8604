package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned on signup
	RoleUser UserRole = "USER"
	// RoleAdmin can manage every user record
	RoleAdmin UserRole = "ADMIN"
)

// User is the user model
type User struct {
	bun.BaseModel    `bun:"table:users,alias:usr"`
	ID               int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name             string     `bun:"name,notnull" json:"name,omitempty"`
	Email            string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Image            string     `bun:"image" json:"image,omitempty"`
	Role             UserRole   `bun:"role,notnull,default:'USER'" json:"role,omitempty"`
	PasswordHash     string     `bun:"password_hash,notnull" json:"-"`
	IsVerified       bool       `bun:"is_verified,notnull,default:false" json:"is_verified"`
	VerificationCode string     `bun:"verification_code" json:"-"`
	ResetToken       string     `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExpiry *time.Time `bun:"reset_token_expiry,nullzero" json:"-"`
	CreatedAt        *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PublicUser is the projection of User that is safe to serialize in
// responses. Secret columns (password hash, verification code, reset
// token) never leave the persistence layer through it.
type PublicUser struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Image      string   `json:"image"`
	Role       UserRole `json:"role"`
	IsVerified bool     `json:"is_verified"`
}

// Public returns the serializable projection of the user
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Image:      u.Image,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
}

// HasActiveResetToken reports whether the user carries a reset token that
// has not expired at the given instant. The token equality check itself is
// the caller's job; this only covers the lifecycle half.
func (u *User) HasActiveResetToken(now time.Time) bool {
	if u == nil || u.ResetToken == "" || u.ResetTokenExpiry == nil {
		return false
	}
	return now.Before(*u.ResetTokenExpiry)
}
