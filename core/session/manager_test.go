package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/huynhmanh219/project-course-sub001/core"
	"github.com/huynhmanh219/project-course-sub001/core/session"
	credstore "github.com/huynhmanh219/project-course-sub001/storage/credentials"
	testutil "github.com/huynhmanh219/project-course-sub001/tests"
)

// fakeBackend counts auth calls and hands out fresh sessions.
type fakeBackend struct {
	mu           sync.Mutex
	refreshCalls int
	loginCalls   int
	logoutCalls  int
	pwdCalls     int

	refreshDelay time.Duration
	refreshErr   error
	t            *testing.T
	usr          session.User
}

func (b *fakeBackend) fresh() session.Session {
	return testutil.NewSession(b.t, b.usr, time.Now().Add(time.Hour))
}

func (b *fakeBackend) RefreshSession(ctx context.Context, token string) (session.Session, error) {
	b.mu.Lock()
	b.refreshCalls++
	b.mu.Unlock()
	if b.refreshDelay > 0 {
		select {
		case <-time.After(b.refreshDelay):
		case <-ctx.Done():
			return session.Session{}, ctx.Err()
		}
	}
	if b.refreshErr != nil {
		return session.Session{}, b.refreshErr
	}
	return b.fresh(), nil
}

func (b *fakeBackend) LoginSession(ctx context.Context, email, password string) (session.Session, error) {
	b.mu.Lock()
	b.loginCalls++
	b.mu.Unlock()
	return b.fresh(), nil
}

func (b *fakeBackend) LogoutSession(ctx context.Context) error {
	b.mu.Lock()
	b.logoutCalls++
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) ChangePassword(ctx context.Context, current, password string) error {
	b.mu.Lock()
	b.pwdCalls++
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) calls() (refresh, login, logout, pwd int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls, b.loginCalls, b.logoutCalls, b.pwdCalls
}

func setupManager(t *testing.T) (*session.Manager, *credstore.InMemStore, *fakeBackend) {
	t.Helper()
	store := credstore.NewInMemStore()
	backend := &fakeBackend{t: t, usr: testutil.Lecturer("42")}
	mgr := session.NewManager(store, backend, testutil.Logger(), testutil.Config())
	return mgr, store, backend
}

func TestValidTokenFresh(t *testing.T) {
	mgr, store, backend := setupManager(t)
	sess := testutil.NewSession(t, testutil.Lecturer("42"), time.Now().Add(time.Hour))
	if err := store.Set(sess); err != nil {
		t.Fatalf("store.Set() failed: %v", err)
	}

	token, err := mgr.ValidToken(context.Background())
	if err != nil {
		t.Fatalf("ValidToken() failed: %v", err)
	}
	if token != sess.Token {
		t.Error("fresh token was not returned as-is")
	}
	if refresh, _, _, _ := backend.calls(); refresh != 0 {
		t.Errorf("refresh calls = %d, want 0", refresh)
	}
}

func TestValidTokenNoSession(t *testing.T) {
	mgr, _, backend := setupManager(t)

	_, err := mgr.ValidToken(context.Background())
	if !core.IsAuthenticationError(err) {
		t.Errorf("ValidToken() error = %v, want AuthenticationError", err)
	}
	if refresh, _, _, _ := backend.calls(); refresh != 0 {
		t.Errorf("refresh calls = %d, want 0", refresh)
	}
}

func TestValidTokenRefreshesExpired(t *testing.T) {
	mgr, store, backend := setupManager(t)
	stale := testutil.NewSession(t, testutil.Lecturer("42"), time.Now().Add(-time.Minute))
	if err := store.Set(stale); err != nil {
		t.Fatalf("store.Set() failed: %v", err)
	}

	token, err := mgr.ValidToken(context.Background())
	if err != nil {
		t.Fatalf("ValidToken() failed: %v", err)
	}
	if token == stale.Token {
		t.Error("stale token was returned")
	}
	if refresh, _, _, _ := backend.calls(); refresh != 1 {
		t.Errorf("refresh calls = %d, want 1", refresh)
	}

	stored, err := store.Get()
	if err != nil {
		t.Fatalf("store.Get() failed: %v", err)
	}
	if stored.Token != token {
		t.Error("refreshed session was not persisted")
	}
	if mgr.State() != session.StateAuthenticated {
		t.Errorf("state = %v, want authenticated", mgr.State())
	}
}

func TestValidTokenCoalescesConcurrentRefresh(t *testing.T) {
	mgr, store, backend := setupManager(t)
	backend.refreshDelay = 100 * time.Millisecond
	stale := testutil.NewSession(t, testutil.Lecturer("42"), time.Now().Add(-time.Minute))
	if err := store.Set(stale); err != nil {
		t.Fatalf("store.Set() failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	tokens := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			token, err := mgr.ValidToken(context.Background())
			if err != nil {
				t.Errorf("ValidToken() failed: %v", err)
				return
			}
			tokens <- token
		}()
	}
	wg.Wait()
	close(tokens)

	if refresh, _, _, _ := backend.calls(); refresh != 1 {
		t.Fatalf("refresh calls = %d, want exactly 1", refresh)
	}
	var first string
	for token := range tokens {
		if first == "" {
			first = token
		} else if token != first {
			t.Fatal("concurrent callers observed different refresh outcomes")
		}
	}
}

func TestRefreshSurvivesInitiatorCancel(t *testing.T) {
	mgr, store, backend := setupManager(t)
	backend.refreshDelay = 100 * time.Millisecond
	stale := testutil.NewSession(t, testutil.Lecturer("42"), time.Now().Add(-time.Minute))
	if err := store.Set(stale); err != nil {
		t.Fatalf("store.Set() failed: %v", err)
	}

	// cancel the initiating caller's context mid-refresh; the shared outcome
	// must still settle successfully for it and any waiter
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	token, err := mgr.ValidToken(ctx)
	if err != nil {
		t.Fatalf("ValidToken() failed: %v", err)
	}
	if token == stale.Token {
		t.Error("stale token was returned")
	}
	if refresh, _, _, _ := backend.calls(); refresh != 1 {
		t.Errorf("refresh calls = %d, want 1", refresh)
	}
	stored, err := store.Get()
	if err != nil {
		t.Fatalf("store.Get() failed: %v", err)
	}
	if stored.Token != token {
		t.Error("refreshed session was not persisted")
	}
	if mgr.State() != session.StateAuthenticated {
		t.Errorf("state = %v, want authenticated", mgr.State())
	}
}

func TestRefreshFailureClearsSessionOnce(t *testing.T) {
	mgr, store, backend := setupManager(t)
	backend.refreshDelay = 50 * time.Millisecond
	backend.refreshErr = errors.New("refresh token rejected")
	stale := testutil.NewSession(t, testutil.Lecturer("42"), time.Now().Add(-time.Minute))
	if err := store.Set(stale); err != nil {
		t.Fatalf("store.Set() failed: %v", err)
	}

	var forcedMu sync.Mutex
	forced := 0
	mgr.OnForcedLogout(func() {
		forcedMu.Lock()
		forced++
		forcedMu.Unlock()
	})

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := mgr.ValidToken(context.Background()); !core.IsAuthenticationError(err) {
				t.Errorf("ValidToken() error = %v, want AuthenticationError", err)
			}
		}()
	}
	wg.Wait()

	if refresh, _, _, _ := backend.calls(); refresh != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", refresh)
	}
	forcedMu.Lock()
	if forced != 1 {
		t.Errorf("forced logout fired %d times, want once", forced)
	}
	forcedMu.Unlock()
	if _, err := store.Get(); errors.Cause(err) != core.ErrNotFound {
		t.Errorf("store.Get() error = %v, want ErrNotFound", err)
	}
	if mgr.State() != session.StateAnonymous {
		t.Errorf("state = %v, want anonymous", mgr.State())
	}
}

func TestLogin(t *testing.T) {
	mgr, store, backend := setupManager(t)

	sess, err := mgr.Login(context.Background(), session.Credentials{Email: "a@test.test", Password: "pwd"})
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	stored, err := store.Get()
	if err != nil {
		t.Fatalf("store.Get() failed: %v", err)
	}
	if stored.Token != sess.Token {
		t.Error("login session was not persisted")
	}
	if _, login, _, _ := backend.calls(); login != 1 {
		t.Errorf("login calls = %d, want 1", login)
	}
}

func TestLoginInvalidInput(t *testing.T) {
	mgr, _, backend := setupManager(t)

	_, err := mgr.Login(context.Background(), session.Credentials{Email: "nope", Password: ""})
	if !core.IsValidationError(err) {
		t.Errorf("Login() error = %v, want ValidationError", err)
	}
	if _, login, _, _ := backend.calls(); login != 0 {
		t.Error("invalid credentials reached the network")
	}
}

func TestLogoutClears(t *testing.T) {
	mgr, store, backend := setupManager(t)
	if _, err := mgr.Login(context.Background(), session.Credentials{Email: "a@test.test", Password: "pwd"}); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	if err := mgr.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	if _, err := store.Get(); errors.Cause(err) != core.ErrNotFound {
		t.Errorf("store.Get() error = %v, want ErrNotFound", err)
	}
	if _, _, logout, _ := backend.calls(); logout != 1 {
		t.Errorf("logout calls = %d, want 1", logout)
	}
	if mgr.State() != session.StateAnonymous {
		t.Errorf("state = %v, want anonymous", mgr.State())
	}
}

func TestChangePasswordPolicy(t *testing.T) {
	mgr, store, backend := setupManager(t)
	usr := testutil.Lecturer("42")
	if err := store.Set(testutil.NewSession(t, usr, time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("store.Set() failed: %v", err)
	}

	tests := []struct {
		name    string
		pc      session.PasswordChange
		wantErr bool
	}{
		{
			name:    "too short",
			pc:      session.PasswordChange{Current: "old", Password: "Ab1!", PasswordConfirm: "Ab1!"},
			wantErr: true,
		},
		{
			name:    "all numeric",
			pc:      session.PasswordChange{Current: "old", Password: "1234567890", PasswordConfirm: "1234567890"},
			wantErr: true,
		},
		{
			name:    "no complexity",
			pc:      session.PasswordChange{Current: "old", Password: "abcdefghij", PasswordConfirm: "abcdefghij"},
			wantErr: true,
		},
		{
			name:    "mismatched confirm",
			pc:      session.PasswordChange{Current: "old", Password: "G00d-pass!", PasswordConfirm: "other"},
			wantErr: true,
		},
		{
			name:    "similar to email",
			pc:      session.PasswordChange{Current: "old", Password: "42@Test.test1", PasswordConfirm: "42@Test.test1"},
			wantErr: true,
		},
		{
			name: "acceptable",
			pc:   session.PasswordChange{Current: "old", Password: "G00d-pass!", PasswordConfirm: "G00d-pass!"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mgr.ChangePassword(context.Background(), tt.pc)
			if tt.wantErr {
				if !core.IsValidationError(err) {
					t.Errorf("ChangePassword() error = %v, want ValidationError", err)
				}
			} else if err != nil {
				t.Errorf("ChangePassword() failed: %v", err)
			}
		})
	}
	if _, _, _, pwd := backend.calls(); pwd != 1 {
		t.Errorf("change-password calls = %d, want 1 (policy must block locally)", pwd)
	}
}

func TestForceLogout(t *testing.T) {
	mgr, store, _ := setupManager(t)
	if err := store.Set(testutil.NewSession(t, testutil.Lecturer("42"), time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("store.Set() failed: %v", err)
	}
	forced := 0
	mgr.OnForcedLogout(func() { forced++ })

	mgr.ForceLogout(context.Background())
	if forced != 1 {
		t.Errorf("forced logout fired %d times, want once", forced)
	}
	if _, err := store.Get(); errors.Cause(err) != core.ErrNotFound {
		t.Errorf("store.Get() error = %v, want ErrNotFound", err)
	}

	// a second force on an anonymous manager must not re-fire the hook
	mgr.ForceLogout(context.Background())
	if forced != 1 {
		t.Errorf("forced logout fired %d times after second call, want still once", forced)
	}
}
