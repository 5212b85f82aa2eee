package auth

import (
	"context"

	"github.com/baechuer/bridge-auth/internal/domain"
)

// ListUsers returns every stored record as-is.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}
