package auth

import (
	"strings"
	"testing"
)

func TestNewVerificationCode_SixDigits(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := newVerificationCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 chars, got %q", code)
		}
		if strings.Trim(code, "0123456789") != "" {
			t.Fatalf("expected digits only, got %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 150 {
		t.Fatalf("codes look non-random: %d distinct of 200", len(seen))
	}
}

func TestRenderVerifyEmail_EscapesCode(t *testing.T) {
	t.Parallel()

	html, err := renderVerifyEmail("<b>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(html, "<b>") {
		t.Fatalf("expected escaped code, got %q", html)
	}
}

func TestVerificationSMS(t *testing.T) {
	t.Parallel()

	if got := verificationSMS("123456"); got != "Your verification code is: 123456." {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestWithAudit_NilKeepsDefault(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, nil, nil, nil, Config{})
	svc.WithAudit(nil).WithCodeGenerator(nil)
	if svc.audit == nil || svc.newCode == nil {
		t.Fatalf("expected defaults kept")
	}
}
