package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// ClaimsContextKey is the fiber locals key the middleware stores decoded
// claims under.
const ClaimsContextKey = "user"

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the TokenClaims in the given context
func WithClaimsContext(ctx context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// ClaimsFromContext finds the claims in the standard context
func ClaimsFromContext(ctx context.Context) (*TokenClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*TokenClaims)
	return raw, ok
}

// ClaimsFromLocals extracts the claims the middleware attached to the
// request. The second return is false on unguarded routes.
func ClaimsFromLocals(c *fiber.Ctx) (*TokenClaims, bool) {
	raw := c.Locals(ClaimsContextKey)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(*TokenClaims)
	return claims, ok
}
