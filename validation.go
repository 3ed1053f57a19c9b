package accounts

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// emailRx is deliberately permissive: it accepts anything shaped like
// local@domain.tld and leaves strictness to the mailbox provider.
var emailRx = regexp.MustCompile(`(?i)^[\w+\-.]+@[a-z\d\-]+(\.[a-z\d\-]+)*\.[a-z]+$`)

const (
	nameMaxLength     = 50
	emailMaxLength    = 255
	passwordMinLength = 6
	// bcrypt ignores input past 72 bytes
	passwordMaxLength = 72
)

// Validate checks name, email, and the transient plaintext password. Every
// violated rule is reported; the result is a validation.Errors map keyed by
// lower-case field name.
func (u *User) Validate() error {
	errs := validation.Errors{}

	if err := validation.ValidateStruct(u,
		validation.Field(&u.Name,
			validation.Required,
			validation.Length(1, nameMaxLength),
		),
		validation.Field(&u.Email,
			validation.Required,
			validation.Length(3, emailMaxLength),
			validation.Match(emailRx),
		),
	); err != nil {
		verrs, ok := err.(validation.Errors)
		if !ok {
			return err
		}
		for field, ferr := range verrs {
			errs[field] = ferr
		}
	}

	// Password carries no json tag to derive a key from, so it is checked
	// standalone under its own name.
	if err := validation.Validate(u.Password,
		validation.Required,
		validation.Length(passwordMinLength, passwordMaxLength),
	); err != nil {
		errs["password"] = err
	}

	return errs.Filter()
}

// Validate enforces presence, length, and authorship on a status post.
func (m *Micropost) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.UserID, validation.Required),
		validation.Field(&m.Content,
			validation.Required,
			validation.Length(1, MicropostMaxLength),
		),
	)
}

// NormalizeEmail lower-cases and trims an email address. Every write and
// lookup path goes through this, which is what makes uniqueness
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// wrapValidationError lifts an ozzo validation result into the rich error
// taxonomy, preserving the per-field messages as metadata.
func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	richErr := goerrors.Wrap(err, goerrors.CategoryValidation, "validation failed").
		WithCode(goerrors.CodeBadRequest)
	if fields := FormatValidationErrorToMap(err); len(fields) > 0 {
		richErr = richErr.WithMetadata(map[string]any{"fields": fields})
	}
	return richErr
}

// FormatValidationErrorToMap flattens validation failures to field => message
// for template rendering. Non-field errors land under "base".
func FormatValidationErrorToMap(err error) map[string]string {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Source != nil {
		err = richErr.Source
	}

	out := map[string]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["base"] = err.Error()
	return out
}
