package identity

import (
	"errors"
	"strings"
)

// Client-facing provider errors. Their text reaches the caller verbatim.
var (
	ErrEmailExists     = errors.New("The email address is already in use by another account.")
	ErrPhoneExists     = errors.New("The user with the provided phone number already exists.")
	ErrInvalidEmail    = errors.New("The email address is improperly formatted.")
	ErrInvalidPhone    = errors.New("The phone number must be a non-empty E.164 standard compliant identifier string.")
	ErrWeakPassword    = errors.New("The password must be a string with at least 6 characters.")
	ErrPasswordTooLong = errors.New("The password must be at most 72 bytes.")
	ErrResetURLUnset   = errors.New("identity provider misconfigured: reset base url is empty")
)

// NormalizeEmail is the registry key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
