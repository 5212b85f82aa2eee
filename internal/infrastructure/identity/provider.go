package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/domain"
)

const (
	minPasswordLen  = 6
	maxPasswordLen  = 72 // bcrypt input limit, in bytes
	resetTokenBytes = 32
	defaultResetTTL = time.Hour
)

type Config struct {
	// ResetBaseURL is the landing page prefix; the token is appended as-is,
	// e.g. "https://app.example.com/reset-password?token=".
	ResetBaseURL  string
	ResetTokenTTL time.Duration
}

// Provider is a self-hosted identity provider: account creation with unique
// email and phone, bearer tokens, and password reset links.
type Provider struct {
	accounts AccountRegistry
	resets   ResetTokenStore
	hasher   PasswordHasher
	signer   TokenSigner
	validate *validator.Validate

	resetBaseURL string
	resetTTL     time.Duration

	newUID func() string
	now    func() time.Time
}

var _ auth.IdentityProvider = (*Provider)(nil)

func NewProvider(accounts AccountRegistry, resets ResetTokenStore, hasher PasswordHasher, signer TokenSigner, cfg Config) *Provider {
	ttl := cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	return &Provider{
		accounts:     accounts,
		resets:       resets,
		hasher:       hasher,
		signer:       signer,
		validate:     validator.New(),
		resetBaseURL: cfg.ResetBaseURL,
		resetTTL:     ttl,
		newUID:       uuid.NewString,
		now:          time.Now,
	}
}

func (p *Provider) CreateAccount(ctx context.Context, acct auth.NewAccount) (string, error) {
	email := NormalizeEmail(acct.Email)
	phone := strings.TrimSpace(acct.Phone)

	if err := p.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	if err := p.validate.Var(phone, "required,e164"); err != nil {
		return "", ErrInvalidPhone
	}
	if err := checkPassword(acct.Password); err != nil {
		return "", err
	}

	hash, err := p.hasher.Hash(acct.Password)
	if err != nil {
		return "", err
	}

	a := Account{
		UID:          p.newUID(),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		CreatedAt:    p.now().UTC(),
	}
	if err := p.accounts.Insert(ctx, a); err != nil {
		return "", err
	}
	return a.UID, nil
}

func (p *Provider) CreateBearerToken(ctx context.Context, uid string) (string, error) {
	return p.signer.Sign(uid)
}

func (p *Provider) GeneratePasswordResetLink(ctx context.Context, email string) (string, error) {
	if p.resetBaseURL == "" {
		return "", ErrResetURLUnset
	}

	a, err := p.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", err
	}

	token, err := newOpaqueToken(resetTokenBytes)
	if err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	if err := p.resets.Save(ctx, token, a.UID, p.resetTTL); err != nil {
		return "", fmt.Errorf("save reset token: %w", err)
	}
	return p.resetBaseURL + token, nil
}

// ConfirmPasswordReset checks the new password before consuming the token,
// so a rejected password leaves the link usable.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (string, error) {
	if err := checkPassword(newPassword); err != nil {
		return "", err
	}

	uid, err := p.resets.Consume(ctx, strings.TrimSpace(token))
	if err != nil {
		return "", err
	}

	hash, err := p.hasher.Hash(newPassword)
	if err != nil {
		return "", err
	}
	if err := p.accounts.SetPasswordHash(ctx, uid, hash); err != nil {
		return "", err
	}
	return uid, nil
}

func checkPassword(pw string) error {
	if utf8.RuneCountInString(pw) < minPasswordLen {
		return ErrWeakPassword
	}
	if len(pw) > maxPasswordLen {
		return ErrPasswordTooLong
	}
	return nil
}

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
