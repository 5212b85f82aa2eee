package auth

import (
	"context"
	"fmt"
	"html/template"
	"strings"
)

const (
	subjectVerifyEmail   = "Verify Your Email"
	subjectPasswordReset = "Password reset"
)

var (
	verifyEmailTmpl = template.Must(template.New("verify_email").Parse(
		`<p>Please enter the following code in the app: <u>{{.Code}}</u></p>`))

	passwordResetTmpl = template.Must(template.New("password_reset").Parse(
		`<p>This is your password reset link: <a href="{{.Link}}">Password Reset Link</a></p>`))
)

func renderVerifyEmail(code string) (string, error) {
	var buf strings.Builder
	if err := verifyEmailTmpl.Execute(&buf, struct{ Code string }{code}); err != nil {
		return "", fmt.Errorf("render verify email: %w", err)
	}
	return buf.String(), nil
}

func renderPasswordReset(link string) (string, error) {
	var buf strings.Builder
	if err := passwordResetTmpl.Execute(&buf, struct{ Link string }{link}); err != nil {
		return "", fmt.Errorf("render password reset: %w", err)
	}
	return buf.String(), nil
}

func verificationSMS(code string) string {
	return fmt.Sprintf("Your verification code is: %s.", code)
}

func (s *Service) sendVerificationEmail(ctx context.Context, to, code string) {
	html, err := renderVerifyEmail(code)
	if err == nil {
		err = s.email.SendEmail(ctx, to, subjectVerifyEmail, html)
	}
	s.notifyFailed("email", to, err)
}

func (s *Service) sendVerificationSMS(ctx context.Context, to, code string) {
	s.notifyFailed("sms", to, s.sms.SendSMS(ctx, to, verificationSMS(code)))
}

func (s *Service) sendPasswordResetEmail(ctx context.Context, to, link string) {
	html, err := renderPasswordReset(link)
	if err == nil {
		err = s.email.SendEmail(ctx, to, subjectPasswordReset, html)
	}
	s.notifyFailed("email", to, err)
}
