package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	textCodeTokenInvalid       = "TOKEN_INVALID"
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeCodeMismatch       = "ACTIVATION_CODE_MISMATCH"
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeDeliveryFailed     = "NOTIFICATION_DELIVERY_FAILED"
	textCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	textCodeAccountSuspended   = "ACCOUNT_SUSPENDED"
	textCodeAccountDisabled    = "ACCOUNT_DISABLED"
)

// ErrDuplicateEmail is returned when the email is already registered. The
// store's unique constraint is the authoritative guard; the pre-issuance
// existence check surfaces the same error early.
// Duplicate registrations map to 400 alongside the other validation
// failures rather than advertising a conflict status of their own.
var ErrDuplicateEmail = goerrors.New("email address is already registered", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateEmail).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenInvalid is returned for tokens with a bad signature or shape,
// including tokens verified against the wrong secret.
var ErrTokenInvalid = goerrors.New("token is invalid", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenInvalid).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned when a token's TTL has elapsed.
var ErrTokenExpired = goerrors.New("token has expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrCodeMismatch is returned when the submitted activation code does not
// match the code embedded in the activation token.
var ErrCodeMismatch = goerrors.New("activation code does not match", goerrors.CategoryValidation).
	WithTextCode(textCodeCodeMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidCredentials is the uniform login failure. Unknown email and wrong
// password produce this exact error so callers cannot enumerate accounts.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrDeliveryFailed is returned when the activation notification could not be
// dispatched.
var ErrDeliveryFailed = goerrors.New("failed to deliver notification", goerrors.CategoryOperation).
	WithTextCode(textCodeDeliveryFailed).
	WithCode(goerrors.CodeInternal)

// ErrStoreUnavailable normalizes connectivity faults from the credential store.
var ErrStoreUnavailable = goerrors.New("credential store unavailable", goerrors.CategoryInternal).
	WithTextCode(textCodeStoreUnavailable).
	WithCode(goerrors.CodeInternal)

// ErrAccountSuspended blocks authentication for suspended accounts.
var ErrAccountSuspended = goerrors.New("account is suspended", goerrors.CategoryAuth).
	WithTextCode(textCodeAccountSuspended).
	WithCode(goerrors.CodeForbidden)

// ErrAccountDisabled blocks authentication for disabled or archived accounts.
var ErrAccountDisabled = goerrors.New("account is disabled", goerrors.CategoryAuth).
	WithTextCode(textCodeAccountDisabled).
	WithCode(goerrors.CodeForbidden)

// ErrUnableToFindSession is the error when a request has no session cookie.
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsDuplicateEmailError reports whether err carries the duplicate-email code.
func IsDuplicateEmailError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr.TextCode == textCodeDuplicateEmail
}

// ErrorStatusCode maps an error to the HTTP status the JSON envelope should
// carry. Unclassified faults map to 500.
func ErrorStatusCode(err error) int {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	return goerrors.CodeInternal
}

// ErrorMessage returns the public message for an error, hiding unclassified
// internals behind a generic message.
func ErrorMessage(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return "unexpected server error"
}
