package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/baechuer/bridge-auth/internal/domain"
)

// BearerSigner issues HS256 bearer tokens for an account uid.
type BearerSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewBearerSigner(secret, issuer string, ttl time.Duration) *BearerSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BearerSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

type BearerClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *BearerSigner) Sign(uid string) (string, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", domain.ErrMissingField("uid")
	}
	if len(s.secret) == 0 {
		return "", domain.ErrTokenSignFailed(errors.New("empty signing secret"))
	}

	now := s.now()
	claims := BearerClaims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Parse validates a token issued by Sign and returns its claims.
func (s *BearerSigner) Parse(token string) (BearerClaims, error) {
	var claims BearerClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return BearerClaims{}, domain.ErrTokenExpired()
		}
		return BearerClaims{}, domain.ErrTokenInvalid()
	}
	if !parsed.Valid || claims.UserID == "" {
		return BearerClaims{}, domain.ErrTokenInvalid()
	}
	return claims, nil
}
