package identity

import (
	"context"
	"time"
)

// Account is the provider-side identity. It never carries the plaintext
// password; the credential store's copy is a separate concern.
type Account struct {
	UID          string
	Email        string // normalized, see NormalizeEmail
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountRegistry persists accounts with unique email and phone indexes.
//   - Insert returns ErrEmailExists / ErrPhoneExists on collision.
//   - FindByEmail returns an error wrapping auth.ErrIdentityNotFound on miss.
type AccountRegistry interface {
	Insert(ctx context.Context, a Account) error
	FindByEmail(ctx context.Context, email string) (Account, error)
	SetPasswordHash(ctx context.Context, uid, hash string) error
}

// ResetTokenStore keeps single-use reset tokens.
// Consume returns domain.ErrTokenInvalid() for unknown, expired or used tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, token, uid string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type TokenSigner interface {
	Sign(uid string) (string, error)
}
