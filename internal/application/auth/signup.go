package auth

import (
	"context"
	"strings"

	"github.com/baechuer/bridge-auth/internal/domain"
)

// SignUp creates the identity-provider account, stores the user record with
// two fresh verification codes and dispatches them by email and SMS.
// Nothing is rolled back if a later step fails.
func (s *Service) SignUp(ctx context.Context, phone, email, password string) (SignUpResult, error) {
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)
	switch {
	case phone == "":
		return SignUpResult{}, domain.ErrMissingField("phone")
	case email == "":
		return SignUpResult{}, domain.ErrMissingField("email")
	case password == "":
		return SignUpResult{}, domain.ErrMissingField("password")
	}

	uid, err := s.idp.CreateAccount(ctx, NewAccount{Email: email, Phone: phone, Password: password})
	if err != nil {
		return SignUpResult{}, providerErr(err)
	}

	emailCode, err := s.newCode()
	if err != nil {
		return SignUpResult{}, domain.ErrRandomFailed(err)
	}
	phoneCode, err := s.newCode()
	if err != nil {
		return SignUpResult{}, domain.ErrRandomFailed(err)
	}

	u := domain.User{
		ID:                    uid,
		Phone:                 phone,
		Email:                 email,
		Password:              password,
		EmailVerified:         false,
		EmailVerificationCode: emailCode,
		PhoneVerified:         false,
		PhoneVerificationCode: phoneCode,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return SignUpResult{}, err
	}

	s.audit("signup", map[string]string{"user_id": uid})

	s.sendVerificationEmail(ctx, email, emailCode)
	s.sendVerificationSMS(ctx, phone, phoneCode)

	return SignUpResult{UserID: uid, Message: MsgSignedUp}, nil
}

// providerErr passes structured errors through and turns anything else
// into a ProviderError carrying the provider's message.
func providerErr(err error) error {
	if domain.KindOf(err) != "" {
		return err
	}
	return domain.ErrProvider(err)
}
