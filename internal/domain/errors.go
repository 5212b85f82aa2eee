package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindNotVerified    ErrKind = "not_verified"   // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindCodeMismatch   ErrKind = "code_mismatch"  // 400
	KindProvider       ErrKind = "provider"       // 400
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: summary for clients
// - Meta: optional details (field, reason, etc.)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// KindOf returns the kind of a domain error, or "" for anything else.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// ----------------------
// Lookup misses
// ----------------------

// ErrEmailNotRegistered is the login / forgot-password lookup miss.
// Clients receive 401 for it, not 404.
func ErrEmailNotRegistered() *Error {
	return New(KindNotFound, "invalid_email", "Invalid email")
}

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "User not found")
}

func ErrIdentityNotFound(cause error) *Error {
	return Wrap(KindNotFound, "identity_not_found", "No user found with that email", cause)
}

// ----------------------
// Credentials / tokens
// ----------------------

func ErrInvalidPassword() *Error {
	return New(KindAuth, "invalid_password", "Invalid password")
}

func ErrTokenInvalid() *Error {
	return New(KindAuth, "token_invalid", "invalid token")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, "token_expired", "token is expired")
}

// ----------------------
// Verification gating
// ----------------------

func ErrEmailNotVerified() *Error {
	return New(KindNotVerified, "email_not_verified", "Email not verified")
}

func ErrPhoneNotVerified() *Error {
	return New(KindNotVerified, "phone_not_verified", "Phone not verified")
}

func ErrIncorrectCode(channel Channel) *Error {
	return WithMeta(New(KindCodeMismatch, "incorrect_code", "Incorrect verification code"), map[string]string{
		"channel": string(channel),
	})
}

// ----------------------
// Identity provider
// ----------------------

// ErrProvider forwards the provider's message verbatim to the caller.
func ErrProvider(cause error) *Error {
	msg := "identity provider error"
	if cause != nil {
		msg = cause.Error()
	}
	return Wrap(KindProvider, "provider_error", msg, cause)
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "too many requests"), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrRedisUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "redis_unavailable", "cache unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
