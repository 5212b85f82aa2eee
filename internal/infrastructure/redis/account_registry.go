package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/domain"
	"github.com/baechuer/bridge-auth/internal/infrastructure/identity"
)

/*
AccountRegistry
---------------
Key layout (prefix "idp:"):
  idp:account:<uid>   HASH  uid, email, phone, password_hash, created_at
  idp:email:<email>   STRING uid
  idp:phone:<phone>   STRING uid
Insert claims both index keys and writes the hash in one script, so a
collision on either index leaves nothing behind.
*/
type AccountRegistry struct {
	rdb    *goredis.Client
	prefix string
}

var _ identity.AccountRegistry = (*AccountRegistry)(nil)

func NewAccountRegistry(c *Client) *AccountRegistry {
	return &AccountRegistry{rdb: rdbOf(c), prefix: "idp:"}
}

const insertAccountLua = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 1
end
if redis.call("EXISTS", KEYS[2]) == 1 then
  return 2
end
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], ARGV[1])
redis.call("HSET", KEYS[3], "uid", ARGV[1], "email", ARGV[2], "phone", ARGV[3], "password_hash", ARGV[4], "created_at", ARGV[5])
return 0
`

func (r *AccountRegistry) Insert(ctx context.Context, a identity.Account) error {
	if r.rdb == nil {
		return errors.New("redis account registry not configured")
	}

	keys := []string{r.emailKey(a.Email), r.phoneKey(a.Phone), r.accountKey(a.UID)}
	res, err := r.rdb.Eval(ctx, insertAccountLua, keys,
		a.UID, a.Email, a.Phone, a.PasswordHash, a.CreatedAt.UTC().Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return domain.ErrRedisUnavailable(fmt.Errorf("account insert: %w", err))
	}

	switch res {
	case 0:
		return nil
	case 1:
		return identity.ErrEmailExists
	case 2:
		return identity.ErrPhoneExists
	default:
		return domain.ErrRedisUnavailable(fmt.Errorf("account insert: unexpected result %d", res))
	}
}

func (r *AccountRegistry) FindByEmail(ctx context.Context, email string) (identity.Account, error) {
	if r.rdb == nil {
		return identity.Account{}, errors.New("redis account registry not configured")
	}

	uid, err := r.rdb.Get(ctx, r.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return identity.Account{}, fmt.Errorf("email %q: %w", email, auth.ErrIdentityNotFound)
		}
		return identity.Account{}, domain.ErrRedisUnavailable(fmt.Errorf("account lookup: %w", err))
	}

	m, err := r.rdb.HGetAll(ctx, r.accountKey(uid)).Result()
	if err != nil {
		return identity.Account{}, domain.ErrRedisUnavailable(fmt.Errorf("account load: %w", err))
	}
	if len(m) == 0 {
		// dangling index
		return identity.Account{}, fmt.Errorf("uid %q: %w", uid, auth.ErrIdentityNotFound)
	}

	created, _ := time.Parse(time.RFC3339Nano, m["created_at"])
	return identity.Account{
		UID:          m["uid"],
		Email:        m["email"],
		Phone:        m["phone"],
		PasswordHash: m["password_hash"],
		CreatedAt:    created,
	}, nil
}

const setPasswordHashLua = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "password_hash", ARGV[1])
return 1
`

func (r *AccountRegistry) SetPasswordHash(ctx context.Context, uid, hash string) error {
	if r.rdb == nil {
		return errors.New("redis account registry not configured")
	}

	n, err := r.rdb.Eval(ctx, setPasswordHashLua, []string{r.accountKey(uid)}, hash).Int()
	if err != nil {
		return domain.ErrRedisUnavailable(fmt.Errorf("account update: %w", err))
	}
	if n == 0 {
		return fmt.Errorf("uid %q: %w", uid, auth.ErrIdentityNotFound)
	}
	return nil
}

func (r *AccountRegistry) accountKey(uid string) string { return r.prefix + "account:" + uid }
func (r *AccountRegistry) emailKey(email string) string { return r.prefix + "email:" + email }
func (r *AccountRegistry) phoneKey(phone string) string { return r.prefix + "phone:" + phone }
