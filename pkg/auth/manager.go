package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/itsneelabh/shopeasy/pkg/logger"
	"github.com/itsneelabh/shopeasy/pkg/memory"
	"github.com/itsneelabh/shopeasy/pkg/notify"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

// SessionKey is the storage record holding the cached session
const SessionKey = "currentSession"

// User-facing confirmations
const (
	MsgSignedIn      = "Signed in successfully"
	MsgSignedUp      = "Account created successfully! Please check your email for verification."
	MsgSignedOut     = "Signed out"
	MsgResetSent     = "Password reset instructions sent to your email"
	msgPasswordBlank = "Password is required"
)

// SessionListener observes session changes. A nil session means signed out.
type SessionListener func(*Session)

// Manager validates input, delegates to a Provider and keeps the current
// session. It is safe for concurrent use.
type Manager struct {
	provider Provider
	storage  memory.Memory
	key      string
	logger   logger.Logger
	notifier notify.Notifier
	now      func() time.Time

	mu        sync.RWMutex
	session   *Session
	listeners map[int]SessionListener
	nextID    int
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger
func WithManagerLogger(l logger.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithNotifier sends success and failure notifications
func WithNotifier(n notify.Notifier) ManagerOption {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithManagerClock overrides time.Now for expiry checks
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSessionKey changes the storage record name
func WithSessionKey(key string) ManagerOption {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// NewManager creates a manager and restores any unexpired cached session.
// storage may be nil, in which case sessions live only in memory.
func NewManager(ctx context.Context, provider Provider, storage memory.Memory, opts ...ManagerOption) *Manager {
	m := &Manager{
		provider:  provider,
		storage:   storage,
		key:       SessionKey,
		logger:    logger.NewNopLogger(),
		now:       time.Now,
		listeners: make(map[int]SessionListener),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.restore(ctx)
	return m
}

func (m *Manager) restore(ctx context.Context) {
	if m.storage == nil {
		return
	}
	raw, err := m.storage.Get(ctx, m.key)
	if err != nil {
		if !memory.IsNotFound(err) {
			m.logger.Warn("Could not read cached session", "error", err.Error())
		}
		return
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.UserID == "" {
		m.logger.Warn("Discarding unreadable cached session")
		m.forget(ctx)
		return
	}
	if s.Expired(m.now()) {
		m.logger.Info("Cached session expired", "uid", s.UserID)
		m.forget(ctx)
		return
	}
	m.session = &s
	m.logger.Debug("Restored cached session", "uid", s.UserID)
}

// Current returns a copy of the signed-in session
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil || m.session.Expired(m.now()) {
		return Session{}, false
	}
	return *m.session, true
}

// SignIn validates the form and signs the user in
func (m *Manager) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return Session{}, m.reject(ctx, "signin", err)
	}
	if password == "" {
		return Session{}, m.reject(ctx, "signin", &AuthError{
			Category: CategoryInvalidCredentials, Code: CodeMissingField, Message: msgPasswordBlank,
		})
	}

	s, err := m.provider.SignIn(ctx, Credentials{Email: email, Password: password})
	if err != nil {
		return Session{}, m.reject(ctx, "signin", err)
	}
	m.establish(ctx, s)
	m.notify(notify.Success(MsgSignedIn))
	return *s, nil
}

// SignUp validates the form, creates the account, sets the display name to
// "First Last" and sends a verification email. Failures after the account
// exists are logged and the new session is kept.
func (m *Manager) SignUp(ctx context.Context, email, password string, profile Profile) (Session, error) {
	email = strings.TrimSpace(email)
	if strings.TrimSpace(profile.FirstName) == "" {
		return Session{}, m.reject(ctx, "signup", &AuthError{
			Category: CategoryInvalidCredentials, Code: CodeMissingField, Message: "First name is required",
		})
	}
	if strings.TrimSpace(profile.LastName) == "" {
		return Session{}, m.reject(ctx, "signup", &AuthError{
			Category: CategoryInvalidCredentials, Code: CodeMissingField, Message: "Last name is required",
		})
	}
	if err := ValidateEmail(email); err != nil {
		return Session{}, m.reject(ctx, "signup", err)
	}
	if err := ValidatePassword(password); err != nil {
		return Session{}, m.reject(ctx, "signup", err)
	}

	s, err := m.provider.SignUp(ctx, Credentials{Email: email, Password: password}, profile)
	if err != nil {
		return Session{}, m.reject(ctx, "signup", err)
	}
	ctx = telemetry.WithUserID(ctx, s.UserID)

	if updated, err := m.provider.UpdateProfile(ctx, s, profile.DisplayName()); err != nil {
		m.logger.Warn("Could not set display name", telemetry.EnrichLogFields(ctx, map[string]interface{}{
			"error": err.Error(),
		}))
	} else {
		s = updated
	}
	if err := m.provider.SendEmailVerification(ctx, s); err != nil {
		m.logger.Warn("Could not send verification email", telemetry.EnrichLogFields(ctx, map[string]interface{}{
			"error": err.Error(),
		}))
	}

	m.establish(ctx, s)
	m.notify(notify.Success(MsgSignedUp))
	return *s, nil
}

// SendPasswordReset emails reset instructions
func (m *Manager) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return m.reject(ctx, "reset", err)
	}
	if err := m.provider.SendPasswordReset(ctx, email); err != nil {
		return m.reject(ctx, "reset", err)
	}
	m.logger.Info("Password reset requested")
	m.notify(notify.Success(MsgResetSent))
	return nil
}

// SignOut ends the session locally even when the provider call fails
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	prev := m.session
	m.session = nil
	m.mu.Unlock()

	m.forget(ctx)
	var err error
	if prev != nil {
		err = m.provider.SignOut(ctx, prev)
		if err != nil {
			m.logger.Warn("Provider sign-out failed", "uid", prev.UserID, "error", err.Error())
		}
		m.logger.Info("User signed out", "uid", prev.UserID)
		m.broadcast(nil)
		m.notify(notify.Success(MsgSignedOut))
	}
	return err
}

// OnSessionChanged registers fn and calls it once with the current session.
// The returned func unsubscribes.
func (m *Manager) OnSessionChanged(fn SessionListener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	var current *Session
	if m.session != nil {
		s := *m.session
		current = &s
	}
	m.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) establish(ctx context.Context, s *Session) {
	m.mu.Lock()
	cp := *s
	m.session = &cp
	m.mu.Unlock()

	m.logger.Info("User signed in", telemetry.EnrichLogFields(telemetry.WithUserID(ctx, s.UserID), map[string]interface{}{
		"email_verified": s.EmailVerified,
	}))
	m.persist(ctx, cp)
	m.broadcast(&cp)
}

func (m *Manager) persist(ctx context.Context, s Session) {
	if m.storage == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		m.logger.Error("Could not encode session", "error", err.Error())
		return
	}
	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = s.ExpiresAt.Sub(m.now())
		if ttl <= 0 {
			return
		}
	}
	if err := m.storage.Set(ctx, m.key, string(data), ttl); err != nil {
		m.logger.Warn("Could not cache session", "error", err.Error())
	}
}

func (m *Manager) forget(ctx context.Context) {
	if m.storage == nil {
		return
	}
	if err := m.storage.Delete(ctx, m.key); err != nil && !memory.IsNotFound(err) {
		m.logger.Warn("Could not clear cached session", "error", err.Error())
	}
}

func (m *Manager) broadcast(s *Session) {
	m.mu.RLock()
	fns := make([]SessionListener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		var arg *Session
		if s != nil {
			cp := *s
			arg = &cp
		}
		fn(arg)
	}
}

// reject normalizes err to *AuthError, logs and notifies
func (m *Manager) reject(ctx context.Context, op string, err error) error {
	var ae *AuthError
	if !errors.As(err, &ae) {
		ae = &AuthError{Category: CategoryUnknown, Code: "UNKNOWN", Err: err}
	}
	m.logger.Warn("Authentication failed", telemetry.EnrichLogFields(ctx, map[string]interface{}{
		"operation": op,
		"category":  string(ae.Category),
		"code":      ae.Code,
	}))
	m.notify(notify.Error(ae.UserMessage()))
	return ae
}

func (m *Manager) notify(n notify.Notification) {
	if m.notifier != nil {
		m.notifier.Notify(n)
	}
}
