package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/infrastructure/identity"
)

// AccountRegistry is the dev fallback for the Redis account registry.
type AccountRegistry struct {
	mu      sync.RWMutex
	byUID   map[string]identity.Account
	byEmail map[string]string // email -> uid
	byPhone map[string]string // phone -> uid
}

var _ identity.AccountRegistry = (*AccountRegistry)(nil)

func NewAccountRegistry() *AccountRegistry {
	return &AccountRegistry{
		byUID:   make(map[string]identity.Account),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

func (r *AccountRegistry) Insert(ctx context.Context, a identity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[a.Email]; ok {
		return identity.ErrEmailExists
	}
	if _, ok := r.byPhone[a.Phone]; ok {
		return identity.ErrPhoneExists
	}
	r.byUID[a.UID] = a
	r.byEmail[a.Email] = a.UID
	r.byPhone[a.Phone] = a.UID
	return nil
}

func (r *AccountRegistry) FindByEmail(ctx context.Context, email string) (identity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uid, ok := r.byEmail[email]
	if !ok {
		return identity.Account{}, fmt.Errorf("email %q: %w", email, auth.ErrIdentityNotFound)
	}
	return r.byUID[uid], nil
}

func (r *AccountRegistry) SetPasswordHash(ctx context.Context, uid, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byUID[uid]
	if !ok {
		return fmt.Errorf("uid %q: %w", uid, auth.ErrIdentityNotFound)
	}
	a.PasswordHash = hash
	r.byUID[uid] = a
	return nil
}
