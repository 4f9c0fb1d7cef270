// ABOUTME: Session manager owning the identity state and its transitions
// ABOUTME: Single writer of the token; notifies subscribers on login, logout, and expiry

package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
)

// Authenticator is the subset of the API client used for sign-in
type Authenticator interface {
	Login(ctx context.Context, creds client.Credentials) (*client.LoginResponse, error)
	Register(ctx context.Context, creds client.Credentials) (*client.RegisterResponse, error)
}

// Manager holds the current session. All token writes go through it.
type Manager struct {
	auth   Authenticator
	store  Store
	logger *slog.Logger

	mu      sync.Mutex
	current Session
	active  bool

	subMu sync.RWMutex
	subs  []func(Event)
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager's logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager and restores any persisted session
func NewManager(auth Authenticator, store Store, opts ...Option) *Manager {
	m := &Manager{
		auth:   auth,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if sess, ok, err := store.Load(); err != nil {
		m.logger.Warn("failed to load session", "error", err)
	} else if ok {
		m.current = sess
		m.active = true
	}
	return m
}

// Subscribe registers fn for every subsequent event. fn is called
// synchronously outside the manager's lock.
func (m *Manager) Subscribe(fn func(Event)) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) emit(ev Event) {
	m.subMu.RLock()
	subs := make([]func(Event), len(m.subs))
	copy(subs, m.subs)
	m.subMu.RUnlock()

	m.logger.Debug("session event", "type", ev.Type.String(), "reason", string(ev.Reason))
	for _, fn := range subs {
		fn(ev)
	}
}

// CurrentToken returns the token and whether one is held
func (m *Manager) CurrentToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Token, m.active
}

// Current returns a copy of the session
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.active
}

// Login authenticates and stores the session. A failure leaves the
// state untouched.
func (m *Manager) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, &AuthError{Message: MsgCredentialsRequired}
	}

	resp, err := m.auth.Login(ctx, client.Credentials{Username: username, Password: password})
	if err != nil {
		m.logger.Info("login failed", "username", username, "error", err)
		return Session{}, &AuthError{Message: loginMessage(err), Err: err}
	}

	sess := Session{Token: resp.AccessToken, Role: resp.Role, Username: username}

	m.mu.Lock()
	m.current = sess
	m.active = true
	if err := m.store.Save(sess); err != nil {
		m.logger.Warn("failed to persist session", "error", err)
	}
	m.mu.Unlock()

	m.emit(Event{Type: EventAuthenticated, Reason: ReasonLogin, Session: sess})
	return sess, nil
}

func loginMessage(err error) string {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Message
	}
	return MsgInvalidCredentials
}

// Register creates an account. On success the caller should route the
// user to login; no session is created.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return &RegistrationError{Message: MsgCredentialsRequired}
	}

	if _, err := m.auth.Register(ctx, client.Credentials{Username: username, Password: password}); err != nil {
		m.logger.Info("registration failed", "username", username, "error", err)
		return &RegistrationError{Message: registrationMessage(err), Err: err}
	}
	return nil
}

func registrationMessage(err error) string {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Message
	}
	if detail := client.DetailOf(err); detail != "" {
		return detail
	}
	return MsgRegistrationFailed
}

// Logout clears the session unconditionally
func (m *Manager) Logout() {
	m.mu.Lock()
	m.current = Session{}
	m.active = false
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear session", "error", err)
	}
	m.mu.Unlock()

	m.emit(Event{Type: EventUnauthenticated, Reason: ReasonLogout})
}

// RequireAuthenticated is the guard for authenticated actions. Without a
// token it emits EventLoginRequired and returns ErrNotAuthenticated.
func (m *Manager) RequireAuthenticated() error {
	if _, ok := m.CurrentToken(); ok {
		return nil
	}
	m.emit(Event{Type: EventLoginRequired})
	return ErrNotAuthenticated
}

// HandleUnauthorized ends the session that token belongs to. Only the
// first call for the current token has an effect; it reports whether this
// call ended the session.
func (m *Manager) HandleUnauthorized(token string) bool {
	m.mu.Lock()
	if !m.active || m.current.Token != token {
		m.mu.Unlock()
		return false
	}
	m.current = Session{}
	m.active = false
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear session", "error", err)
	}
	m.mu.Unlock()

	m.logger.Info("session expired")
	m.emit(Event{Type: EventUnauthenticated, Reason: ReasonExpired})
	return true
}

// sync reconciles memory with the store after an outside change
func (m *Manager) sync() {
	stored, ok, err := m.store.Load()
	if err != nil {
		m.logger.Warn("failed to reload session", "error", err)
		return
	}

	m.mu.Lock()
	var ev *Event
	switch {
	case ok && (!m.active || stored.Token != m.current.Token):
		m.current = stored
		m.active = true
		ev = &Event{Type: EventAuthenticated, Reason: ReasonExternal, Session: stored}
	case !ok && m.active:
		m.current = Session{}
		m.active = false
		ev = &Event{Type: EventUnauthenticated, Reason: ReasonExternal}
	}
	m.mu.Unlock()

	if ev != nil {
		m.emit(*ev)
	}
}
