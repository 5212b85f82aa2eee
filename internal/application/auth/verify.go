package auth

import (
	"context"
	"strings"

	"github.com/baechuer/bridge-auth/internal/domain"
)

func (s *Service) VerifyEmail(ctx context.Context, email, code string) (VerifyResult, error) {
	return s.verify(ctx, domain.ChannelEmail, email, code)
}

func (s *Service) VerifyPhone(ctx context.Context, phone, code string) (VerifyResult, error) {
	return s.verify(ctx, domain.ChannelPhone, phone, code)
}

// verify moves one channel from Unverified to Verified.
// A verified channel answers success without touching the record.
// Wrong codes are rejected with no attempt counting.
func (s *Service) verify(ctx context.Context, ch domain.Channel, key, code string) (VerifyResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return VerifyResult{}, domain.ErrMissingField(string(ch))
	}
	if code == "" {
		return VerifyResult{}, domain.ErrMissingField("code")
	}

	var (
		u   domain.User
		err error
	)
	if ch == domain.ChannelPhone {
		u, err = s.users.FindByPhone(ctx, key)
	} else {
		u, err = s.users.FindByEmail(ctx, key)
	}
	if err != nil {
		return VerifyResult{}, err
	}

	if u.Verified(ch) {
		return VerifyResult{Message: alreadyVerifiedMsg(ch), AlreadyVerified: true}, nil
	}

	if u.Code(ch) != code {
		s.audit("verify_failed", map[string]string{"user_id": u.ID, "channel": string(ch)})
		return VerifyResult{}, domain.ErrIncorrectCode(ch)
	}

	if err := s.users.MarkVerified(ctx, u.ID, ch); err != nil {
		return VerifyResult{}, err
	}

	s.audit("verified", map[string]string{"user_id": u.ID, "channel": string(ch)})
	return VerifyResult{Message: verifiedMsg(ch)}, nil
}

func verifiedMsg(ch domain.Channel) string {
	if ch == domain.ChannelPhone {
		return MsgPhoneVerified
	}
	return MsgEmailVerified
}

func alreadyVerifiedMsg(ch domain.Channel) string {
	if ch == domain.ChannelPhone {
		return MsgPhoneAlreadyVerified
	}
	return MsgEmailAlreadyVerified
}
