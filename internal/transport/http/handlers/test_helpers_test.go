package http_handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/infrastructure/identity"
	"github.com/baechuer/bridge-auth/internal/infrastructure/memory"
	"github.com/baechuer/bridge-auth/internal/infrastructure/security"
	"github.com/baechuer/bridge-auth/internal/transport/http/response"
)

const testResetBase = "https://app.example/reset?token="

// testEnv is a handler stack over the in-memory backends.
type testEnv struct {
	store   *memory.UserStore
	handler http.Handler
}

func newTestEnv(t *testing.T, cfg auth.Config, exposeUsers bool) *testEnv {
	t.Helper()

	store := memory.NewUserStore()
	idp := identity.NewProvider(
		memory.NewAccountRegistry(),
		memory.NewOneTimeTokenStore(),
		security.NewBcryptHasher(4),
		security.NewBearerSigner("test-secret", "bridge-auth-test", time.Hour),
		identity.Config{ResetBaseURL: testResetBase},
	)
	senders := memory.NewLogSender(zerolog.Nop())
	svc := auth.NewService(store, store, idp, senders, senders, cfg)

	authH := NewAuthHandler(svc)
	usersH := NewUsersHandler(svc, exposeUsers)
	healthH := NewHealthHandler(store)

	r := chi.NewRouter()
	r.Get("/", healthH.Root)
	r.Get("/users", usersH.List)
	r.Post("/signup", authH.SignUp)
	r.Post("/login", authH.Login)
	r.Post("/forgot-password", authH.ForgotPassword)
	r.Post("/reset-password", authH.ResetPassword)
	r.Post("/email-valid", authH.VerifyEmail)
	r.Post("/phone-valid", authH.VerifyPhone)

	return &testEnv{store: store, handler: r}
}

func (e *testEnv) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, mustJSONBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

// mustJSONBody marshals v to JSON; a string is sent as-is.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewReader([]byte(s))
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func mustReadJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("decode json failed; body=%s err=%v", rr.Body.String(), err)
	}
}

// requireError asserts status and error code of an error response.
func requireError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) response.ErrorPayload {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d; body=%s", status, rr.Code, rr.Body.String())
	}
	var body response.ErrorBody
	mustReadJSON(t, rr, &body)
	if body.Error.Code != code {
		t.Fatalf("expected code %q, got %q; body=%s", code, body.Error.Code, rr.Body.String())
	}
	return body.Error
}
