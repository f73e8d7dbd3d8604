package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ForgotPasswordMessage is returned for every forgot-password request,
// whether or not the email exists, so the endpoint cannot be used to
// enumerate accounts.
const ForgotPasswordMessage = "A password reset email has been sent. It will expire within 24 hours."

// LoginResult is what the login flow, and the flows that chain into it,
// hand back to transport.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	IsVerified   bool
	User         *PublicUser
}

// RefreshResult carries a freshly minted access token. The refresh token
// itself is not rotated.
type RefreshResult struct {
	AccessToken string
	IsVerified  bool
}

// SignupInput is the identity material a new signup provides
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Image    string
}

// AuthService sequences the authentication flows over injected
// collaborators. It keeps no state between requests; concurrent signups
// for one email are arbitrated solely by the unique email constraint.
type AuthService struct {
	repo   RepositoryManager
	tokens TokenService
	mailer Mailer
	cfg    Config
	logger Logger
	now    func() time.Time
}

// NewAuthService wires the orchestrator with its collaborators
func NewAuthService(repo RepositoryManager, tokens TokenService, mailer Mailer, cfg Config) *AuthService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &AuthService{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		cfg:    cfg,
		logger: defLogger{},
		now:    time.Now,
	}
}

// WithLogger overrides the service logger
func (s *AuthService) WithLogger(logger Logger) *AuthService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock overrides the time source used for reset-token expiry
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// Login verifies credentials and issues both token flavors. An unknown
// email and a wrong password produce the same message; only the status
// class differs, keeping the original service's contract.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IsVerified:   user.IsVerified,
		User:         user.Public(),
	}, nil
}

// Signup creates the identity, dispatches the verification email, and
// chains straight into Login with the same credentials. The email send
// is best effort: a failed dispatch is logged and the signup still
// succeeds with the row already persisted.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*LoginResult, error) {
	hash, err := HashPassword(input.Password, s.cfg.GetBcryptCost())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	if _, err := s.repo.Users().GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
	}

	code := GenerateResetCode()

	user := &User{
		Name:             input.Name,
		Email:            input.Email,
		Image:            input.Image,
		Role:             RoleUser,
		PasswordHash:     hash,
		IsVerified:       false,
		VerificationCode: code,
	}

	if user, err = s.repo.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	html, err := VerificationEmailHTML(EmailData{
		Name: user.Name,
		Code: code,
		Link: s.cfg.GetClientURL() + "/",
	})
	if err != nil {
		s.logger.Error("failed to render verification email", "error", err)
	} else if err := s.mailer.Send(ctx, user.Email, SubjectVerification, html); err != nil {
		s.logger.Error("failed to send verification email", "error", err, "user_id", user.ID)
	}

	return s.Login(ctx, input.Email, input.Password)
}

// Verify marks the account verified when the submitted code matches the
// stored one. Once verified the endpoint is idempotent: it reports
// success without touching state or comparing codes again.
func (s *AuthService) Verify(ctx context.Context, email, code string) (string, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if user.IsVerified {
		return "User is already verified", nil
	}

	if user.VerificationCode != code {
		return "", ErrVerificationCode
	}

	if err := s.repo.Users().MarkVerified(ctx, user.ID); err != nil {
		return "", err
	}

	return "User has been verified", nil
}

// Refresh validates the cookie token and mints a new access token. The
// user is re-read so role and verification changes made since issuance
// take effect here, unlike on access-token validation. A user that has
// disappeared is indistinguishable from a bad token.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*RefreshResult, error) {
	claims, err := s.tokens.ValidateRefresh(rawRefresh)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.repo.Users().GetByEmail(ctx, claims.Email())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during refresh")
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{
		AccessToken: accessToken,
		IsVerified:  user.IsVerified,
	}, nil
}

// ForgotPassword stages a reset token and emails it. The caller always
// gets the same generic message; an unknown email is a silent no-op.
// The raw token and expiry are never part of the response.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token := GenerateResetCode()
	expiry := s.now().Add(ResetTokenTTL)

	if err := s.repo.Users().SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return err
	}

	html, err := PasswordResetEmailHTML(EmailData{
		Name: user.Name,
		Code: token,
		Link: fmt.Sprintf("%s/%s/reset-password/%s", s.cfg.GetClientURL(), user.Email, token),
	})
	if err != nil {
		s.logger.Error("failed to render reset email", "error", err)
		return nil
	}

	if err := s.mailer.Send(ctx, user.Email, SubjectPasswordReset, html); err != nil {
		// the token row is already persisted; surfacing this would
		// leak account existence through the error path
		s.logger.Error("failed to send reset email", "error", err, "user_id", user.ID)
	}

	return nil
}

// ResetPassword validates the submitted token against the stored one and
// its expiry; both must hold. On success the password is replaced, the
// token cleared, and the flow chains into Login with the new credentials.
// Failures change no state.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) (*LoginResult, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, goerrors.New("Invalid token or token has expired", goerrors.CategoryNotFound).
				WithTextCode(TextCodeResetTokenInvalid).
				WithCode(goerrors.CodeNotFound)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	if !user.HasActiveResetToken(s.now()) || user.ResetToken != token {
		return nil, ErrResetTokenInvalid
	}

	hash, err := HashPassword(newPassword, s.cfg.GetBcryptCost())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	if err := s.repo.Users().ResetPassword(ctx, user.ID, hash); err != nil {
		return nil, err
	}

	return s.Login(ctx, email, newPassword)
}
