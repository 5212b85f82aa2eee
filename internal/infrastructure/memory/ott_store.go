package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/bridge-auth/internal/domain"
	"github.com/baechuer/bridge-auth/internal/infrastructure/identity"
)

type ottEntry struct {
	uid       string
	expiresAt time.Time
}

// OneTimeTokenStore holds password reset tokens in process memory.
type OneTimeTokenStore struct {
	mu   sync.Mutex
	data map[string]ottEntry
	now  func() time.Time
}

var _ identity.ResetTokenStore = (*OneTimeTokenStore)(nil)

func NewOneTimeTokenStore() *OneTimeTokenStore {
	return &OneTimeTokenStore{
		data: make(map[string]ottEntry),
		now:  time.Now,
	}
}

func (s *OneTimeTokenStore) Save(ctx context.Context, token, uid string, ttl time.Duration) error {
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if uid == "" {
		return domain.ErrMissingField("user_id")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[token] = ottEntry{uid: uid, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *OneTimeTokenStore) Consume(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[token]
	if !ok {
		return "", domain.ErrTokenInvalid()
	}
	delete(s.data, token)
	if !s.now().Before(e.expiresAt) {
		return "", domain.ErrTokenInvalid()
	}
	return e.uid, nil
}
