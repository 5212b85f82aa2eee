package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/baechuer/bridge-auth/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserStore struct {
	mu sync.Mutex

	byID map[string]domain.User

	// injected errors (if set, method returns error)
	createErr   error
	findErr     error
	markErr     error
	updatePwErr error
	listErr     error

	marked []struct {
		id string
		ch domain.Channel
	}
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[string]domain.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserStore) find(match func(domain.User) bool) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.User{}, f.findErr
	}
	for _, u := range f.byID {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return f.find(func(u domain.User) bool { return u.Email == email })
}

func (f *fakeUserStore) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	return f.find(func(u domain.User) bool { return u.Phone == phone })
}

func (f *fakeUserStore) MarkVerified(ctx context.Context, userID string, ch domain.Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.MarkVerified(ch)
	f.byID[userID] = u
	f.marked = append(f.marked, struct {
		id string
		ch domain.Channel
	}{userID, ch})
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, userID, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updatePwErr != nil {
		return f.updatePwErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Password = password
	f.byID[userID] = u
	return nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserStore) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserStore) get(id string) (domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	return u, ok
}

type fakeResetLog struct {
	mu        sync.Mutex
	entries   []domain.PasswordReset
	appendErr error
}

func (f *fakeResetLog) Append(ctx context.Context, r domain.PasswordReset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, r)
	return nil
}

type fakeIDP struct {
	mu sync.Mutex

	seq      int
	accounts map[string]NewAccount // uid -> account
	tokens   map[string]string     // reset token -> uid

	createErr  error
	tokenErr   error
	linkErr    error
	confirmErr error

	confirmed []struct{ token, password string }
}

func newFakeIDP() *fakeIDP {
	return &fakeIDP{
		accounts: map[string]NewAccount{},
		tokens:   map[string]string{},
	}
}

func (f *fakeIDP) CreateAccount(ctx context.Context, acct NewAccount) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	for _, a := range f.accounts {
		if a.Email == acct.Email {
			return "", errors.New("The email address is already in use by another account.")
		}
	}
	f.seq++
	uid := fmt.Sprintf("uid-%d", f.seq)
	f.accounts[uid] = acct
	return uid, nil
}

func (f *fakeIDP) CreateBearerToken(ctx context.Context, uid string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "token-for-" + uid, nil
}

func (f *fakeIDP) GeneratePasswordResetLink(ctx context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.linkErr != nil {
		return "", f.linkErr
	}
	for uid, a := range f.accounts {
		if a.Email == email {
			tok := "reset-" + uid
			f.tokens[tok] = uid
			return "https://reset.example/reset?token=" + tok, nil
		}
	}
	return "", fmt.Errorf("lookup %s: %w", email, ErrIdentityNotFound)
}

func (f *fakeIDP) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmErr != nil {
		return "", f.confirmErr
	}
	uid, ok := f.tokens[token]
	if !ok {
		return "", domain.ErrTokenInvalid()
	}
	delete(f.tokens, token)
	f.confirmed = append(f.confirmed, struct{ token, password string }{token, newPassword})
	return uid, nil
}

type sentEmail struct {
	to, subject, html string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{to, subject, html})
	return f.err
}

type sentSMS struct {
	to, body string
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentSMS{to, body})
	return f.err
}

/*
Service builder
*/

type testDeps struct {
	users  *fakeUserStore
	resets *fakeResetLog
	idp    *fakeIDP
	email  *fakeEmail
	sms    *fakeSMS
	audits *[]auditEntry
}

func newSvcForTest(t *testing.T) (*Service, testDeps) {
	t.Helper()
	return newSvcWithConfig(t, Config{ReturnResetLink: true})
}

func newSvcWithConfig(t *testing.T, cfg Config) (*Service, testDeps) {
	t.Helper()

	d := testDeps{
		users:  newFakeUserStore(),
		resets: &fakeResetLog{},
		idp:    newFakeIDP(),
		email:  &fakeEmail{},
		sms:    &fakeSMS{},
		audits: &[]auditEntry{},
	}

	var mu sync.Mutex
	svc := NewService(d.users, d.resets, d.idp, d.email, d.sms, cfg).
		WithAudit(func(action string, fields map[string]string) {
			mu.Lock()
			defer mu.Unlock()
			*d.audits = append(*d.audits, auditEntry{action: action, fields: fields})
		})

	// deterministic codes: 111111, 222222, ...
	n := 0
	svc.WithCodeGenerator(func() (string, error) {
		n++
		return fmt.Sprintf("%d%d%d%d%d%d", n, n, n, n, n, n), nil
	})

	return svc, d
}

// seedUser registers a user through the fakes with both channels verified.
func seedUser(d testDeps, email, phone, password string) domain.User {
	uid, _ := d.idp.CreateAccount(context.Background(), NewAccount{Email: email, Phone: phone, Password: password})
	u := domain.User{
		ID:            uid,
		Email:         email,
		Phone:         phone,
		Password:      password,
		EmailVerified: true,
		PhoneVerified: true,
	}
	d.users.put(u)
	return u
}

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := domainCode(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}

func findAudit(audits *[]auditEntry, action string) (auditEntry, bool) {
	for i := len(*audits) - 1; i >= 0; i-- {
		if (*audits)[i].action == action {
			return (*audits)[i], true
		}
	}
	return auditEntry{}, false
}
