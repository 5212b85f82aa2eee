package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/bridge-auth/internal/domain"
)

func pendingUser(id, email, phone string) domain.User {
	return domain.User{
		ID:                    id,
		Email:                 email,
		Phone:                 phone,
		Password:              "secret1",
		EmailVerificationCode: "123456",
		PhoneVerificationCode: "654321",
	}
}

func TestUserStore_CreateAndFind(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingUser("u1", "a@b.com", "+15550001111")))

	got, err := s.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	got, err = s.FindByPhone(ctx, "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)

	_, err = s.FindByEmail(ctx, "A@B.COM")
	assert.True(t, domain.Is(err, "user_not_found"), "lookups are exact-match")
}

func TestUserStore_Create_DuplicateID(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingUser("u1", "a@b.com", "+1")))
	err := s.Create(ctx, pendingUser("u1", "c@d.com", "+2"))
	assert.True(t, domain.Is(err, "internal_error"))
}

func TestUserStore_MarkVerified_ClearsOnlyThatChannel(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingUser("u1", "a@b.com", "+15550001111")))

	require.NoError(t, s.MarkVerified(ctx, "u1", domain.ChannelPhone))

	got, err := s.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, got.PhoneVerified)
	assert.Empty(t, got.PhoneVerificationCode)
	assert.False(t, got.EmailVerified)
	assert.Equal(t, "123456", got.EmailVerificationCode)

	assert.True(t, domain.Is(s.MarkVerified(ctx, "missing", domain.ChannelEmail), "user_not_found"))
}

func TestUserStore_UpdatePassword(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingUser("u1", "a@b.com", "+1")))

	require.NoError(t, s.UpdatePassword(ctx, "u1", "brandnew"))
	got, _ := s.FindByEmail(ctx, "a@b.com")
	assert.Equal(t, "brandnew", got.Password)

	assert.True(t, domain.Is(s.UpdatePassword(ctx, "nope", "x"), "user_not_found"))
}

func TestUserStore_List_SortedByID(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingUser("u2", "c@d.com", "+2")))
	require.NoError(t, s.Create(ctx, pendingUser("u1", "a@b.com", "+1")))

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "u2", users[1].ID)
}

func TestUserStore_Append_AssignsTimestamp(t *testing.T) {
	s := NewUserStore()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Append(context.Background(), domain.PasswordReset{Email: "a@b.com", Link: "l1"}))
	require.NoError(t, s.Append(context.Background(), domain.PasswordReset{Email: "a@b.com", Link: "l2"}))

	log := s.Resets()
	require.Len(t, log, 2)
	assert.Equal(t, fixed, log[0].Timestamp)
	assert.Equal(t, "l2", log[1].Link)
}
