package auth

import (
	"context"
	"errors"

	"github.com/baechuer/bridge-auth/internal/domain"
)

/*
UserStore
---------
Credential-store port: one document per user, keyed by the identifier the
identity provider assigned. Lookup misses return domain.ErrUserNotFound().
*/
type UserStore interface {
	Create(ctx context.Context, u domain.User) error
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByPhone(ctx context.Context, phone string) (domain.User, error)

	// MarkVerified sets <channel>_verified=true and removes the
	// <channel>_verification_code field.
	MarkVerified(ctx context.Context, userID string, ch domain.Channel) error
	UpdatePassword(ctx context.Context, userID string, password string) error

	List(ctx context.Context) ([]domain.User, error)
}

/*
ResetLog
--------
Append-only password reset audit log. The store assigns the timestamp.
*/
type ResetLog interface {
	Append(ctx context.Context, r domain.PasswordReset) error
}

/*
IdentityProvider
----------------
Owns accounts, bearer tokens and reset links.
Non-domain errors it returns are forwarded to the client verbatim.
*/
type NewAccount struct {
	Email    string
	Phone    string
	Password string
}

type IdentityProvider interface {
	CreateAccount(ctx context.Context, acct NewAccount) (uid string, err error)
	CreateBearerToken(ctx context.Context, uid string) (string, error)
	// GeneratePasswordResetLink returns an error wrapping ErrIdentityNotFound
	// when no account carries the email.
	GeneratePasswordResetLink(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) (uid string, err error)
}

// ErrIdentityNotFound is the provider's distinguishable not-found signal.
var ErrIdentityNotFound = errors.New("no user record found for the provided identifier")

/*
Notification senders
---------------------
Fire-and-forget from the workflow's point of view: a returned error is
reported through the audit hook and otherwise ignored.
*/
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}
