package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/bridge-auth/internal/domain"
	"github.com/baechuer/bridge-auth/internal/infrastructure/identity"
)

// OneTimeTokenStore keeps password reset tokens as "idp:reset:<token>" -> uid
// with a TTL. Consume is an atomic GET+DEL.
type OneTimeTokenStore struct {
	rdb    *goredis.Client
	prefix string
}

var _ identity.ResetTokenStore = (*OneTimeTokenStore)(nil)

func NewOneTimeTokenStore(c *Client) *OneTimeTokenStore {
	return &OneTimeTokenStore{
		rdb:    rdbOf(c),
		prefix: "idp:reset:",
	}
}

func (s *OneTimeTokenStore) Save(ctx context.Context, token, uid string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	uid = strings.TrimSpace(uid)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if uid == "" {
		return domain.ErrMissingField("user_id")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	if s.rdb == nil {
		return errors.New("redis one-time-token store not configured")
	}

	if err := s.rdb.Set(ctx, s.prefix+token, uid, ttl).Err(); err != nil {
		return domain.ErrRedisUnavailable(fmt.Errorf("ott save: %w", err))
	}
	return nil
}

const consumeLua = `
local v = redis.call("GET", KEYS[1])
if not v then
  return nil
end
redis.call("DEL", KEYS[1])
return v
`

func (s *OneTimeTokenStore) Consume(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}
	if s.rdb == nil {
		return "", errors.New("redis one-time-token store not configured")
	}

	res, err := s.rdb.Eval(ctx, consumeLua, []string{s.prefix + token}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// not found, expired or already consumed
			return "", domain.ErrTokenInvalid()
		}
		return "", domain.ErrRedisUnavailable(fmt.Errorf("ott consume: %w", err))
	}

	uid, ok := res.(string)
	if !ok || strings.TrimSpace(uid) == "" {
		return "", domain.ErrTokenInvalid()
	}
	return uid, nil
}
