package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/bridge-auth/internal/domain"
)

// ForgotPassword asks the identity provider for a reset link, appends it to
// the reset log and emails it. Unknown emails stop before any side effect.
func (s *Service) ForgotPassword(ctx context.Context, email string) (ForgotPasswordResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return ForgotPasswordResult{}, domain.ErrMissingField("email")
	}

	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if domain.Is(err, "user_not_found") {
			return ForgotPasswordResult{}, domain.ErrEmailNotRegistered()
		}
		return ForgotPasswordResult{}, err
	}

	link, err := s.idp.GeneratePasswordResetLink(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return ForgotPasswordResult{}, domain.ErrIdentityNotFound(err)
		}
		return ForgotPasswordResult{}, providerErr(err)
	}

	if err := s.resets.Append(ctx, domain.PasswordReset{Email: email, Link: link}); err != nil {
		return ForgotPasswordResult{}, err
	}

	s.audit("password_reset_requested", map[string]string{"email": email})
	s.sendPasswordResetEmail(ctx, email, link)

	res := ForgotPasswordResult{Message: MsgResetLinkGenerated}
	if s.returnResetLink {
		res.ResetLink = link
	}
	return res, nil
}

// ResetPassword redeems a reset token with the identity provider and mirrors
// the new password into the user record so Login keeps matching.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if newPassword == "" {
		return domain.ErrMissingField("new_password")
	}

	uid, err := s.idp.ConfirmPasswordReset(ctx, token, newPassword)
	if err != nil {
		return providerErr(err)
	}

	if err := s.users.UpdatePassword(ctx, uid, newPassword); err != nil {
		return err
	}

	s.audit("password_reset", map[string]string{"user_id": uid})
	return nil
}
