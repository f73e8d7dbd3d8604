package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService issues and validates the two token flavors. Issuance is a
// pure function of claims, secrets, and the clock; nothing is persisted.
type TokenService interface {
	IssueAccessToken(user *User) (string, error)
	IssueRefreshToken(user *User) (string, error)
	ValidateAccess(raw string) (*TokenClaims, error)
	ValidateRefresh(raw string) (*TokenClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	logger     Logger
	now        func() time.Time
}

var _ TokenService = (*TokenServiceImpl)(nil)

// NewTokenService creates a new TokenService instance. Access and refresh
// tokens are signed with distinct keys so one can never stand in for the
// other.
func NewTokenService(accessKey, refreshKey []byte, accessTTL, refreshTTL time.Duration, issuer string, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		accessKey:  accessKey,
		refreshKey: refreshKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source used for iat/exp and validation
func (ts *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	if now != nil {
		ts.now = now
	}
	return ts
}

// IssueAccessToken signs a short-lived token carrying the user's identity claims
func (ts *TokenServiceImpl) IssueAccessToken(user *User) (string, error) {
	return ts.sign(user, ts.accessKey, ts.accessTTL)
}

// IssueRefreshToken signs the longer-lived cookie token with the refresh key
func (ts *TokenServiceImpl) IssueRefreshToken(user *User) (string, error) {
	return ts.sign(user, ts.refreshKey, ts.refreshTTL)
}

func (ts *TokenServiceImpl) sign(user *User, key []byte, ttl time.Duration) (string, error) {
	if user == nil {
		return "", goerrors.New("user must not be nil", goerrors.CategoryInternal)
	}

	now := ts.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:          user.ID,
		UserEmail:    user.Email,
		UserRole:     user.Role,
		UserVerified: user.IsVerified,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(key)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// ValidateAccess parses and validates a bearer token against the access key
func (ts *TokenServiceImpl) ValidateAccess(raw string) (*TokenClaims, error) {
	return ts.validate(raw, ts.accessKey)
}

// ValidateRefresh parses and validates a cookie token against the refresh key
func (ts *TokenServiceImpl) ValidateRefresh(raw string) (*TokenClaims, error) {
	return ts.validate(raw, ts.refreshKey)
}

func (ts *TokenServiceImpl) validate(raw string, key []byte) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validation encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, ErrTokenMalformed
		}
		return key, nil
	}, jwt.WithTimeFunc(ts.now))

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token validation could not decode claims")
		return nil, ErrTokenMalformed
	}

	if err := claims.requireIdentity(); err != nil {
		return nil, err
	}

	return claims, nil
}
