package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCredentials covers both unknown-email and
	// wrong-password failures so neither case is distinguishable.
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// TextCodeTokenExpired marks an expired access or refresh token
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks a token that failed signature or shape checks
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeResetTokenInvalid covers wrong and expired reset tokens alike
	TextCodeResetTokenInvalid = "RESET_TOKEN_INVALID"
	// TextCodeEmailTaken marks a signup against an existing email
	TextCodeEmailTaken = "EMAIL_TAKEN"
)

// ErrNoEmptyString is returned when an empty password is given to the hasher
var ErrNoEmptyString = errors.New("password must not be empty")

// ErrMismatchedHashAndPassword is the only verification failure the
// credential verifier reports; a malformed stored hash yields the same
// error so callers cannot tell the cases apart.
var ErrMismatchedHashAndPassword = goerrors.New("Invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserNotFound is returned when a user lookup misses. For login the
// orchestrator keeps the original service's loose 404 semantics with the
// same "Invalid credentials" message.
var ErrUserNotFound = goerrors.New("User not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials is the not-found flavor of a failed login
var ErrInvalidCredentials = goerrors.New("Invalid credentials", goerrors.CategoryNotFound).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeNotFound)

// ErrEmailTaken is returned when a signup collides with an existing email,
// either on the pre-check or on the unique-constraint violation raised by
// a concurrent signup.
var ErrEmailTaken = goerrors.New("User already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrTokenExpired is returned for tokens past their expiry
var ErrTokenExpired = goerrors.New("Unauthorized", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail signature, algorithm,
// or claim-shape checks. Same category and message as ErrTokenExpired so
// the transport response gives no oracle.
var ErrTokenMalformed = goerrors.New("Unauthorized", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnauthorized is the generic unauthenticated error
var ErrUnauthorized = goerrors.New("Unauthorized", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when a valid token carries a role outside the
// required allow list. Distinct from ErrUnauthorized.
var ErrForbidden = goerrors.New("Forbidden", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden)

// ErrResetTokenInvalid covers both a wrong reset token and an expired one
var ErrResetTokenInvalid = goerrors.New("Invalid token or token has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeResetTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrVerificationCode is returned when the submitted verification code
// does not match the stored one
var ErrVerificationCode = goerrors.New("Invalid verification code", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenExpired
	}
	return false
}

// IsConflictError reports whether the error is the duplicate-email case
func IsConflictError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}
	return false
}
