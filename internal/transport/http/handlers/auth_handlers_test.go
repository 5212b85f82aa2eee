package http_handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/domain"
)

var signupBody = map[string]string{
	"phone":    "+15550001111",
	"email":    "a@b.com",
	"password": "secret1",
}

func signUp(t *testing.T, e *testEnv) domain.User {
	t.Helper()
	rr := e.post(t, "/signup", signupBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("signup: %d %s", rr.Code, rr.Body.String())
	}
	var body map[string]string
	mustReadJSON(t, rr, &body)
	if body["uid"] == "" || body["message"] != auth.MsgSignedUp {
		t.Fatalf("unexpected signup body %v", body)
	}

	u, err := e.store.FindByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if u.ID != body["uid"] {
		t.Fatalf("uid mismatch: %q vs %q", u.ID, body["uid"])
	}
	return u
}

func TestSignUp_MissingField_400(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, true)

	rr := e.post(t, "/signup", map[string]string{"email": "a@b.com", "password": "secret1"})
	payload := requireError(t, rr, http.StatusBadRequest, "missing_field")
	if payload.Meta["field"] != "phone" {
		t.Fatalf("expected field phone, got %v", payload.Meta)
	}
}

func TestSignUp_InvalidJSON_400(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, true)

	requireError(t, e.post(t, "/signup", `{"email":`), http.StatusBadRequest, "invalid_json")
}

func TestSignUp_DuplicateEmail_ProviderError(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, true)
	signUp(t, e)

	rr := e.post(t, "/signup", map[string]string{
		"phone":    "+15550002222",
		"email":    "a@b.com",
		"password": "secret1",
	})
	payload := requireError(t, rr, http.StatusBadRequest, "provider_error")
	if !strings.Contains(payload.Message, "already in use") {
		t.Fatalf("expected provider message, got %q", payload.Message)
	}
}

func TestSignUp_BadPhone_ProviderError(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, true)

	rr := e.post(t, "/signup", map[string]string{
		"phone":    "555-1111",
		"email":    "a@b.com",
		"password": "secret1",
	})
	requireError(t, rr, http.StatusBadRequest, "provider_error")
}

func TestSignUp_PasswordOver72Bytes_ProviderError(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, true)

	rr := e.post(t, "/signup", map[string]string{
		"phone":    "+15550001111",
		"email":    "a@b.com",
		"password": strings.Repeat("p", 73),
	})
	payload := requireError(t, rr, http.StatusBadRequest, "provider_error")
	if !strings.Contains(payload.Message, "72 bytes") {
		t.Fatalf("expected provider message, got %q", payload.Message)
	}
	if _, err := e.store.FindByEmail(context.Background(), "a@b.com"); err == nil {
		t.Fatalf("expected no user record")
	}
}

func TestLogin_StatusCodes(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, true)
	u := signUp(t, e)

	requireError(t, e.post(t, "/login", map[string]string{"email": "ghost@b.com", "password": "x"}),
		http.StatusUnauthorized, "invalid_email")
	requireError(t, e.post(t, "/login", map[string]string{"email": "a@b.com", "password": "wrong"}),
		http.StatusPaymentRequired, "invalid_password")
	requireError(t, e.post(t, "/login", map[string]string{"email": "a@b.com", "password": "secret1"}),
		http.StatusGone, "email_not_verified")

	rr := e.post(t, "/email-valid", map[string]string{"email": "a@b.com", "code": u.EmailVerificationCode})
	if rr.Code != http.StatusOK {
		t.Fatalf("verify email: %d %s", rr.Code, rr.Body.String())
	}
	requireError(t, e.post(t, "/login", map[string]string{"email": "a@b.com", "password": "secret1"}),
		http.StatusLengthRequired, "phone_not_verified")

	rr = e.post(t, "/phone-valid", map[string]string{"phone": "+15550001111", "code": u.PhoneVerificationCode})
	if rr.Code != http.StatusOK {
		t.Fatalf("verify phone: %d %s", rr.Code, rr.Body.String())
	}

	rr = e.post(t, "/login", map[string]string{"email": "a@b.com", "password": "secret1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	var body map[string]string
	mustReadJSON(t, rr, &body)
	if body["message"] != auth.MsgLoginSuccessful || body["uid"] != u.ID || body["token"] == "" {
		t.Fatalf("unexpected login body %v", body)
	}
}

func TestVerify_WrongCodeAndUnknownUser(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, true)
	signUp(t, e)

	requireError(t, e.post(t, "/email-valid", map[string]string{"email": "a@b.com", "code": "xxxxxx"}),
		http.StatusBadRequest, "incorrect_code")
	requireError(t, e.post(t, "/phone-valid", map[string]string{"phone": "+19999999999", "code": "123456"}),
		http.StatusNotFound, "user_not_found")
	requireError(t, e.post(t, "/phone-valid", map[string]string{"phone": "+15550001111"}),
		http.StatusBadRequest, "missing_field")
}

func TestVerify_AlreadyVerified(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, true)
	u := signUp(t, e)

	e.post(t, "/email-valid", map[string]string{"email": "a@b.com", "code": u.EmailVerificationCode})
	rr := e.post(t, "/email-valid", map[string]string{"email": "a@b.com", "code": "anything"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	mustReadJSON(t, rr, &body)
	if body["message"] != auth.MsgEmailAlreadyVerified {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	e := newTestEnv(t, auth.Config{ReturnResetLink: true}, true)
	signUp(t, e)

	requireError(t, e.post(t, "/forgot-password", map[string]string{"email": "ghost@b.com"}),
		http.StatusUnauthorized, "invalid_email")

	rr := e.post(t, "/forgot-password", map[string]string{"email": "a@b.com"})
	if rr.Code != http.StatusOK {
		t.Fatalf("forgot: %d %s", rr.Code, rr.Body.String())
	}
	var body map[string]string
	mustReadJSON(t, rr, &body)
	link := body["reset_link"]
	if body["message"] != auth.MsgResetLinkGenerated || !strings.HasPrefix(link, testResetBase) {
		t.Fatalf("unexpected body %v", body)
	}
	if n := len(e.store.Resets()); n != 1 {
		t.Fatalf("expected 1 reset record, got %d", n)
	}

	token := strings.TrimPrefix(link, testResetBase)
	requireError(t, e.post(t, "/reset-password", map[string]string{"token": token, "new_password": "x"}),
		http.StatusBadRequest, "provider_error")
	requireError(t, e.post(t, "/reset-password", map[string]string{"token": token, "new_password": strings.Repeat("p", 80)}),
		http.StatusBadRequest, "provider_error")

	rr = e.post(t, "/reset-password", map[string]string{"token": token, "new_password": "brandnew"})
	if rr.Code != http.StatusOK {
		t.Fatalf("reset: %d %s", rr.Code, rr.Body.String())
	}
	requireError(t, e.post(t, "/reset-password", map[string]string{"token": token, "new_password": "brandnew"}),
		http.StatusUnauthorized, "token_invalid")

	u, _ := e.store.FindByEmail(context.Background(), "a@b.com")
	if u.Password != "brandnew" {
		t.Fatalf("expected stored password updated, got %q", u.Password)
	}
}

func TestForgotPassword_LinkWithheld(t *testing.T) {
	e := newTestEnv(t, auth.Config{ReturnResetLink: false}, true)
	signUp(t, e)

	rr := e.post(t, "/forgot-password", map[string]string{"email": "a@b.com"})
	if rr.Code != http.StatusOK {
		t.Fatalf("forgot: %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "reset_link") {
		t.Fatalf("link must be withheld: %s", rr.Body.String())
	}
}

func TestListUsers(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, true)
	u := signUp(t, e)

	rr := e.get(t, "/users")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Users []map[string]any `json:"users"`
	}
	mustReadJSON(t, rr, &body)
	if len(body.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(body.Users))
	}
	got := body.Users[0]
	if got["email"] != "a@b.com" || got["password"] != "secret1" || got["email_verification_code"] != u.EmailVerificationCode {
		t.Fatalf("unexpected record %v", got)
	}
}

func TestListUsers_Disabled_404(t *testing.T) {
	e := newTestEnv(t, auth.Config{}, false)

	requireError(t, e.get(t, "/users"), http.StatusNotFound, "not_found")
}
