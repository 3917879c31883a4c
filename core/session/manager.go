package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/huynhmanh219/project-course-sub001/core"
)

// State is the Manager's position in the session lifecycle.
type State uint8

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	}
	return "anonymous"
}

type (
	// Refresher exchanges a stale token for a fresh Session through the
	// unauthenticated refresh endpoint.
	Refresher interface {
		RefreshSession(ctx context.Context, token string) (Session, error)
	}

	// Authenticator performs the credential-based auth calls.
	Authenticator interface {
		LoginSession(ctx context.Context, email, password string) (Session, error)
		LogoutSession(ctx context.Context) error
		ChangePassword(ctx context.Context, current, password string) error
	}

	// Backend is the network surface the Manager drives; the API gateway
	// implements it.
	Backend interface {
		Authenticator
		Refresher
	}

	// Manager guarantees that callers receive either a currently valid token
	// or a clear "must re-authenticate" signal. It is the single writer of
	// the Store.
	Manager struct {
		store   Store
		backend Backend
		log     core.Logger
		leeway  time.Duration

		mu             sync.Mutex
		state          State
		inflight       chan struct{} // closed when the outstanding refresh settles
		refreshedToken string
		refreshErr     error
		onForcedLogout func()
	}
)

func NewManager(store Store, backend Backend, logger core.Logger, conf *core.Config) *Manager {
	m := &Manager{
		store:   store,
		backend: backend,
		log:     logger,
		leeway:  conf.JWTRefreshLeeway,
		state:   StateAnonymous,
	}
	// hydrate from durable storage
	if sess, err := m.store.Get(); err == nil && !sess.Expired(m.leeway) {
		m.state = StateAuthenticated
	}
	return m
}

// OnForcedLogout registers the hook fired exactly once per forced logout,
// e.g. to navigate back to the login entry point.
func (m *Manager) OnForcedLogout(fn func()) {
	m.mu.Lock()
	m.onForcedLogout = fn
	m.mu.Unlock()
}

// State returns a point-in-time snapshot of the lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a snapshot of the stored Session, or core.ErrNotFound.
func (m *Manager) Current() (Session, error) {
	return m.store.Get()
}

// ValidToken returns a token that is valid right now. An expired token
// triggers a silent refresh; concurrent callers during an outstanding
// refresh share its single outcome rather than issuing duplicates. When the
// refresh fails the session is cleared, the forced-logout hook fires once
// and every caller receives an AuthenticationError.
func (m *Manager) ValidToken(ctx context.Context) (string, error) {
	m.mu.Lock()

	sess, err := m.store.Get()
	if err != nil {
		m.state = StateAnonymous
		m.mu.Unlock()
		if errors.Cause(err) == core.ErrNotFound {
			return "", core.NewAuthenticationError(errors.New("no active session"))
		}
		return "", errors.Wrap(err, "reading session store")
	}

	if !sess.Expired(m.leeway) {
		m.state = StateAuthenticated
		m.mu.Unlock()
		return sess.Token, nil
	}

	// expired: join the outstanding refresh if there is one
	if m.state == StateRefreshing {
		done := m.inflight
		m.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		m.mu.Lock()
		token, refreshErr := m.refreshedToken, m.refreshErr
		m.mu.Unlock()
		return token, refreshErr
	}

	// become the single refresher
	m.state = StateRefreshing
	done := make(chan struct{})
	m.inflight = done
	m.mu.Unlock()

	// the outcome is shared by every coalesced waiter, so the refresh must
	// not die with the initiating caller's context; the HTTP client's own
	// timeout still bounds it
	fresh, refreshErr := m.backend.RefreshSession(context.WithoutCancel(ctx), sess.Token)

	m.mu.Lock()
	var hook func()
	if refreshErr != nil {
		m.state = StateAnonymous
		m.refreshedToken = ""
		m.refreshErr = core.NewAuthenticationError(errors.Wrap(refreshErr, "session refresh failed"))
		if clrErr := m.store.Clear(); clrErr != nil {
			m.log.Error("clearing session store after failed refresh", clrErr)
		}
		hook = m.onForcedLogout
	} else {
		if setErr := m.store.Set(fresh); setErr != nil {
			m.log.Error("persisting refreshed session", setErr)
		}
		m.state = StateAuthenticated
		m.refreshedToken = fresh.Token
		m.refreshErr = nil
	}
	token, outcome := m.refreshedToken, m.refreshErr
	close(done)
	m.mu.Unlock()

	if hook != nil {
		m.log.Info("session expired and refresh failed; forcing logout")
		hook()
	}
	return token, outcome
}

// Login authenticates creds and installs the resulting Session.
func (m *Manager) Login(ctx context.Context, creds Credentials) (Session, error) {
	if err := creds.Validate(); err != nil {
		return Session{}, err
	}
	sess, err := m.backend.LoginSession(ctx, creds.Email, creds.Password)
	if err != nil {
		return Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Set(sess); err != nil {
		return Session{}, errors.Wrap(err, "persisting session")
	}
	m.state = StateAuthenticated
	m.log.Debug("login", sess.User)
	return sess, nil
}

// Logout revokes the session server-side on a best-effort basis, then clears
// the store unconditionally.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.backend.LogoutSession(ctx); err != nil {
		// the local session goes away regardless
		m.log.Warn("server-side logout failed", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAnonymous
	return m.store.Clear()
}

// ChangePassword validates pc against the password policy and submits it.
func (m *Manager) ChangePassword(ctx context.Context, pc PasswordChange) error {
	sess, err := m.store.Get()
	if err != nil {
		return core.NewAuthenticationError(errors.New("no active session"))
	}
	if err := pc.Validate(sess.User); err != nil {
		return err
	}
	return m.backend.ChangePassword(ctx, pc.Current, pc.Password)
}

// ForceLogout destroys the session without a server round trip. The gateway
// invokes it when the server itself rejects our credentials.
func (m *Manager) ForceLogout(ctx context.Context) {
	m.mu.Lock()
	_, err := m.store.Get()
	hadSession := err == nil
	if clrErr := m.store.Clear(); clrErr != nil {
		m.log.Error("clearing session store", clrErr)
	}
	m.state = StateAnonymous
	hook := m.onForcedLogout
	m.mu.Unlock()

	if hadSession && hook != nil {
		hook()
	}
}
