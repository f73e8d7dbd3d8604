package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/softyse/unilink-auth/middleware/jwtware"
)

// RefreshCookieName is the cookie the refresh token travels in
const RefreshCookieName = "refreshToken"

// AuthController exposes the auth flows over HTTP
type AuthController struct {
	Logger  Logger
	Service *AuthService
	Config  Config
	now     func() time.Time
}

// NewAuthController builds the controller; panics on missing collaborators
// the same way the app cannot meaningfully start without them.
func NewAuthController(service *AuthService, cfg Config) *AuthController {
	if service == nil {
		panic("Missing AuthService in auth controller...")
	}
	if cfg == nil {
		panic("Missing Config in auth controller...")
	}
	return &AuthController{
		Logger:  defLogger{},
		Service: service,
		Config:  cfg,
		now:     time.Now,
	}
}

// WithLogger overrides the controller logger
func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// WithClock overrides the time source used for cookie expiry
func (a *AuthController) WithClock(now func() time.Time) *AuthController {
	if now != nil {
		a.now = now
	}
	return a
}

// accessValidator adapts the TokenService to the middleware's validator
// interface.
type accessValidator struct {
	tokens TokenService
}

func (v accessValidator) Validate(raw string) (jwtware.AuthClaims, error) {
	return v.tokens.ValidateAccess(raw)
}

// Authenticate builds the route guard for the given role allow list. An
// empty list admits any bearer of a valid access token; a non-empty list
// additionally requires the token's role to be a member, answering 403
// rather than 401 when it is not.
func Authenticate(tokens TokenService, roles ...UserRole) fiber.Handler {
	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed = append(allowed, string(role))
	}
	return jwtware.New(jwtware.Config{
		TokenValidator: accessValidator{tokens: tokens},
		ContextKey:     ClaimsContextKey,
		RequiredRoles:  allowed,
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if tc, ok := claims.(*TokenClaims); ok {
				return WithClaimsContext(ctx, tc)
			}
			return ctx
		},
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// SignupRequest payload
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Image    string `json:"image"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 0)),
	)
}

// VerifyRequest payload
type VerifyRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
}

func (r VerifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.VerificationCode, validation.Required),
	)
}

// ForgotPasswordRequest payload
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResetPasswordRequest payload. The token may also arrive as the
// resetToken query parameter, which takes precedence when present.
type ResetPasswordRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ResetToken string `json:"resetToken"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 0)),
		validation.Field(&r.ResetToken, validation.Required),
	)
}

// TokenResponse is the success payload of login, signup, refresh, and
// reset-password.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	IsVerified  bool   `json:"isVerified"`
}

// MessageResponse is the success payload of verify and forgot-password
type MessageResponse struct {
	Message string `json:"message"`
}

// Login handles POST /auth/login
func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badInput(c, err)
	}
	if err := payload.Validate(); err != nil {
		return a.validationFailed(c, err)
	}

	result, err := a.Service.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return RespondError(c, err, a.Logger)
	}

	return a.respondWithTokens(c, result)
}

// Signup handles POST /auth/signup; on success it responds exactly like
// login because it chains into it.
func (a *AuthController) Signup(c *fiber.Ctx) error {
	payload := new(SignupRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badInput(c, err)
	}
	if err := payload.Validate(); err != nil {
		return a.validationFailed(c, err)
	}

	result, err := a.Service.Signup(c.UserContext(), SignupInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Image:    payload.Image,
	})
	if err != nil {
		return RespondError(c, err, a.Logger)
	}

	return a.respondWithTokens(c, result)
}

// Verify handles PUT /auth/verify-user; the route is token-gated but
// role-agnostic.
func (a *AuthController) Verify(c *fiber.Ctx) error {
	payload := new(VerifyRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badInput(c, err)
	}
	if err := payload.Validate(); err != nil {
		return a.validationFailed(c, err)
	}

	message, err := a.Service.Verify(c.UserContext(), payload.Email, payload.VerificationCode)
	if err != nil {
		return RespondError(c, err, a.Logger)
	}

	return RespondOK(c, MessageResponse{Message: message})
}

// Refresh handles POST /auth/refresh-token from the refresh cookie
func (a *AuthController) Refresh(c *fiber.Ctx) error {
	raw := c.Cookies(RefreshCookieName)
	if raw == "" {
		return RespondError(c, ErrUnauthorized, a.Logger)
	}

	result, err := a.Service.Refresh(c.UserContext(), raw)
	if err != nil {
		return RespondError(c, err, a.Logger)
	}

	return RespondOK(c, TokenResponse{
		AccessToken: result.AccessToken,
		IsVerified:  result.IsVerified,
	})
}

// ForgotPassword handles PUT /auth/forgot-password. The response is the
// same generic message whether or not the account exists.
func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(ForgotPasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badInput(c, err)
	}
	if err := payload.Validate(); err != nil {
		return a.validationFailed(c, err)
	}

	if err := a.Service.ForgotPassword(c.UserContext(), payload.Email); err != nil {
		return RespondError(c, err, a.Logger)
	}

	return RespondOK(c, MessageResponse{Message: ForgotPasswordMessage})
}

// ResetPassword handles POST /auth/reset-password, chaining into login on
// success.
func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	payload := new(ResetPasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badInput(c, err)
	}
	if token := c.Query("resetToken"); token != "" {
		payload.ResetToken = token
	}
	if err := payload.Validate(); err != nil {
		return a.validationFailed(c, err)
	}

	result, err := a.Service.ResetPassword(c.UserContext(), payload.Email, payload.ResetToken, payload.Password)
	if err != nil {
		return RespondError(c, err, a.Logger)
	}

	return a.respondWithTokens(c, result)
}

func (a *AuthController) respondWithTokens(c *fiber.Ctx, result *LoginResult) error {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    result.RefreshToken,
		Expires:  a.now().Add(a.Config.GetRefreshTokenExpiration()),
		HTTPOnly: true,
		Secure:   a.Config.IsProduction(),
		SameSite: "Lax",
	})

	return RespondOK(c, TokenResponse{
		AccessToken: result.AccessToken,
		IsVerified:  result.IsVerified,
	})
}

func (a *AuthController) badInput(c *fiber.Ctx, err error) error {
	a.Logger.Debug("failed to parse request body", "error", err)
	return RespondError(c, goerrors.New("Invalid request body", goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest), a.Logger)
}

func (a *AuthController) validationFailed(c *fiber.Ctx, err error) error {
	return RespondError(c, goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithCode(goerrors.CodeBadRequest), a.Logger)
}
