package auth

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	MsgSignedUp              = "User created. Separate verification codes sent via email & text"
	MsgLoginSuccessful       = "Login successful"
	MsgResetLinkGenerated    = "Password reset link generated successfully"
	MsgPasswordReset         = "Password updated successfully"
	MsgEmailVerified         = "Email verified successfully"
	MsgEmailAlreadyVerified  = "Email already verified"
	MsgPhoneVerified         = "Phone verified successfully"
	MsgPhoneAlreadyVerified  = "Phone already verified"
	verificationCodeLen      = 6
	verificationCodeAlphabet = "0123456789"
)

type Service struct {
	users  UserStore
	resets ResetLog
	idp    IdentityProvider
	email  EmailSender
	sms    SMSSender

	newCode func() (string, error)
	audit   func(action string, fields map[string]string)

	// returnResetLink echoes the reset link in the ForgotPassword result.
	// Development only.
	returnResetLink bool
}

type Config struct {
	ReturnResetLink bool
}

func NewService(
	users UserStore,
	resets ResetLog,
	idp IdentityProvider,
	email EmailSender,
	sms SMSSender,
	cfg Config,
) *Service {
	return &Service{
		users:  users,
		resets: resets,
		idp:    idp,
		email:  email,
		sms:    sms,

		newCode: newVerificationCode,
		audit:   func(string, map[string]string) {},

		returnResetLink: cfg.ReturnResetLink,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// WithCodeGenerator replaces the verification code source.
func (s *Service) WithCodeGenerator(fn func() (string, error)) *Service {
	if fn != nil {
		s.newCode = fn
	}
	return s
}

type SignUpResult struct {
	UserID  string
	Message string
}

type VerifyResult struct {
	Message         string
	AlreadyVerified bool
}

type LoginResult struct {
	UserID  string
	Token   string // empty when token issuance degraded
	Message string
}

type ForgotPasswordResult struct {
	Message   string
	ResetLink string // empty unless returnResetLink
}

// newVerificationCode draws each digit uniformly, with replacement.
func newVerificationCode() (string, error) {
	var b strings.Builder
	b.Grow(verificationCodeLen)
	max := big.NewInt(int64(len(verificationCodeAlphabet)))
	for i := 0; i < verificationCodeLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(verificationCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// notifyFailed records a best-effort dispatch failure; the caller carries on.
func (s *Service) notifyFailed(channel, to string, err error) {
	if err == nil {
		return
	}
	s.audit("notify_failed", map[string]string{
		"channel": channel,
		"to":      to,
		"error":   err.Error(),
	})
}
