package accounts

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

const (
	// TextCodeTokenExpired marks reset tokens past their window
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeEmailTaken marks case-insensitive email collisions
	TextCodeEmailTaken = "EMAIL_TAKEN"
)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("value cannot be an empty string", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the generic denial for any credential
// failure. Unknown email, wrong password, absent digest, and bad tokens all
// collapse into this error so callers cannot tell the cases apart.
var ErrMismatchedHashAndPassword = goerrors.New("mismatched hash and password", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrResetTokenExpired is returned when the password reset window elapsed
var ErrResetTokenExpired = goerrors.New("password reset token has expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrUnableToFindSession is the error when our request carries no resolver
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// LogError writes err through the logger, expanding rich error metadata
// when present.
func LogError(l Logger, msg string, err error) {
	if l == nil || err == nil {
		return
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && len(richErr.Metadata) > 0 {
		l.Error("%s: %s details=%s", msg, richErr.Message, print.MaybePrettyJSON(richErr.Metadata))
		return
	}

	l.Error("%s: %s", msg, err)
}

// IsValidationError reports whether err carries the validation category.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryValidation
	}
	return false
}

// IsAuthenticationError reports whether err is a credential denial.
func IsAuthenticationError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryAuth
	}
	return false
}
