package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrJWTMissingOrMalformed is returned when no usable token reaches the guard
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
	// ErrInsufficientRole is returned when a valid token carries a role
	// outside the configured allow list. Maps to 403, never 401.
	ErrInsufficientRole = errors.New("insufficient role")
)

// AuthClaims is the identity a validated token resolves to. Mirrors the
// claims type from the auth package without importing it.
type AuthClaims interface {
	UserID() int64
	Email() string
	Role() string
	IsVerified() bool
}

// TokenValidator validates a raw token and returns structured claims.
// This mirrors the TokenService access-token path from the auth package.
type TokenValidator interface {
	Validate(raw string) (AuthClaims, error)
}

type Config struct {
	// Filter defines a function to skip the middleware
	Filter func(*fiber.Ctx) bool
	// SuccessHandler runs after the token passed every check
	SuccessHandler fiber.Handler
	// ErrorHandler renders validation and authorization failures
	ErrorHandler func(*fiber.Ctx, error) error
	// TokenValidator is required for token validation
	TokenValidator TokenValidator
	// ContextKey is the fiber locals key the decoded claims are stored under
	ContextKey string
	// AuthScheme is the optional prefix stripped from the Authorization
	// header. The header is also accepted bare, matching clients that send
	// the raw token.
	AuthScheme string
	// RequiredRoles is the allow list: empty admits any authenticated
	// caller, non-empty rejects roles outside it with ErrInsufficientRole.
	RequiredRoles []string
	// ContextEnricher propagates claims into the request's Go context
	ContextEnricher func(context.Context, AuthClaims) context.Context
}

// New returns a guard that authenticates the request from its bearer
// token and enforces the configured role allow list. It never touches
// persistence: the token's embedded role and verification flag are
// trusted as of issuance time.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw := tokenFromHeader(c, cfg.AuthScheme)
		if raw == "" {
			return cfg.ErrorHandler(c, ErrJWTMissingOrMalformed)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if claims.Email() == "" || claims.Role() == "" {
			return cfg.ErrorHandler(c, ErrJWTMissingOrMalformed)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		if !roleAllowed(claims.Role(), cfg.RequiredRoles) {
			return cfg.ErrorHandler(c, ErrInsufficientRole)
		}

		return cfg.SuccessHandler(c)
	}
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

// defaultErrorHandler keeps the 401/403 distinction and stays otherwise
// non-descriptive: expired, tampered, and absent tokens all read the same.
func defaultErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrInsufficientRole) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
			"data":  nil,
		})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
		"data":  nil,
	})
}

// tokenFromHeader pulls the raw token out of the Authorization header,
// tolerating an optional scheme prefix.
func tokenFromHeader(c *fiber.Ctx, scheme string) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	if scheme != "" && strings.HasPrefix(header, scheme+" ") {
		return strings.TrimSpace(header[len(scheme)+1:])
	}

	return strings.TrimSpace(header)
}

func roleAllowed(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
