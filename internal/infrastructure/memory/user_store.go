package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/domain"
)

// UserStore is the in-process credential store used in dev and tests.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User

	resets []domain.PasswordReset
	now    func() time.Time
}

var (
	_ auth.UserStore = (*UserStore)(nil)
	_ auth.ResetLog  = (*UserStore)(nil)
)

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]domain.User),
		now:   time.Now,
	}
}

func (s *UserStore) Ping(ctx context.Context) error { return nil }

func (s *UserStore) Create(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return domain.ErrInternal(fmt.Errorf("user %s already exists", u.ID))
	}
	s.users[u.ID] = u
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findFirst(func(u domain.User) bool { return u.Email == email })
}

func (s *UserStore) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	return s.findFirst(func(u domain.User) bool { return u.Phone == phone })
}

// findFirst scans in id order so duplicate keys resolve deterministically.
func (s *UserStore) findFirst(match func(domain.User) bool) (domain.User, error) {
	for _, u := range s.snapshot() {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (s *UserStore) MarkVerified(ctx context.Context, userID string, ch domain.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.MarkVerified(ch)
	s.users[userID] = u
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, userID, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Password = password
	s.users[userID] = u
	return nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	return s.snapshot(), nil
}

func (s *UserStore) snapshot() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Append implements auth.ResetLog.
func (s *UserStore) Append(ctx context.Context, r domain.PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Timestamp = s.now().UTC()
	s.resets = append(s.resets, r)
	return nil
}

// Resets returns a copy of the reset log.
func (s *UserStore) Resets() []domain.PasswordReset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PasswordReset(nil), s.resets...)
}
