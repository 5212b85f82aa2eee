package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/baechuer/bridge-auth/internal/domain"
)

// Login checks, in order: the email exists, the password matches, the email
// is verified, the phone is verified. The first failing check decides the
// error. A failed token issuance still counts as a successful login.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	const action = "user.login"

	email = strings.TrimSpace(email)

	audit := func(result, userID string, err error) {
		fields := map[string]string{
			"email":  email,
			"result": result,
		}
		if userID != "" {
			fields["user_id"] = userID
		}
		if err != nil {
			fields["error_code"] = domainCode(err)
		}
		s.audit(action, fields)
	}

	if email == "" {
		return LoginResult{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return LoginResult{}, domain.ErrMissingField("password")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			err = domain.ErrEmailNotRegistered()
		}
		audit("error", "", err)
		return LoginResult{}, err
	}

	var gate error
	switch {
	case subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1:
		gate = domain.ErrInvalidPassword()
	case !u.EmailVerified:
		gate = domain.ErrEmailNotVerified()
	case !u.PhoneVerified:
		gate = domain.ErrPhoneNotVerified()
	}
	if gate != nil {
		audit("error", u.ID, gate)
		return LoginResult{}, gate
	}

	tok, err := s.idp.CreateBearerToken(ctx, u.ID)
	if err != nil {
		s.audit("token_issue_failed", map[string]string{"user_id": u.ID, "error": err.Error()})
		audit("degraded", u.ID, nil)
		return LoginResult{UserID: u.ID, Message: MsgLoginSuccessful}, nil
	}

	audit("ok", u.ID, nil)
	return LoginResult{UserID: u.ID, Token: tok, Message: MsgLoginSuccessful}, nil
}
