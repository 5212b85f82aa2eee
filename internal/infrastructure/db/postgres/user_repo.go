package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/domain"
)

// UserRepo stores each user as a JSONB document keyed by uid.
type UserRepo struct {
	db *sql.DB
}

var (
	_ auth.UserStore = (*UserRepo)(nil)
	_ auth.ResetLog  = (*UserRepo)(nil)
)

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	doc, err := json.Marshal(toUserDoc(u))
	if err != nil {
		return domain.ErrInternal(fmt.Errorf("marshal user: %w", err))
	}

	const q = `INSERT INTO users (id, doc) VALUES ($1, $2);`
	if _, err := r.db.ExecContext(ctx, q, u.ID, doc); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `
SELECT id, doc
FROM users
WHERE doc->>'email' = $1
ORDER BY id
LIMIT 1;
`
	return r.findOne(ctx, q, email)
}

func (r *UserRepo) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	const q = `
SELECT id, doc
FROM users
WHERE doc->>'phone' = $1
ORDER BY id
LIMIT 1;
`
	return r.findOne(ctx, q, phone)
}

func (r *UserRepo) findOne(ctx context.Context, q string, arg string) (domain.User, error) {
	var (
		id  string
		raw []byte
	)
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&id, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return decodeUser(id, raw)
}

func decodeUser(id string, raw []byte) (domain.User, error) {
	var d userDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return domain.User{}, domain.ErrInternal(fmt.Errorf("decode user %s: %w", id, err))
	}
	return d.toDomain(id), nil
}

// MarkVerified sets <channel>_verified and drops the code key in one statement.
func (r *UserRepo) MarkVerified(ctx context.Context, userID string, ch domain.Channel) error {
	const q = `
UPDATE users
SET doc = (doc || jsonb_build_object($2::text, true)) - $3::text
WHERE id = $1;
`
	return r.execOne(ctx, q, userID, string(ch)+"_verified", string(ch)+"_verification_code")
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, password string) error {
	const q = `
UPDATE users
SET doc = jsonb_set(doc, '{password}', to_jsonb($2::text))
WHERE id = $1;
`
	return r.execOne(ctx, q, userID, password)
}

func (r *UserRepo) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	const q = `SELECT id, doc FROM users ORDER BY id;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		u, err := decodeUser(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// Append implements auth.ResetLog; created_at defaults to now() in the table.
func (r *UserRepo) Append(ctx context.Context, pr domain.PasswordReset) error {
	const q = `INSERT INTO password_resets (email, link) VALUES ($1, $2);`
	if _, err := r.db.ExecContext(ctx, q, pr.Email, pr.Link); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
