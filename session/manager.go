package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const csrfTokenBytes = 32

// Manager enforces the session state machine. States are Anonymous and
// Authenticated; Authenticate moves a session forward, while timeout, IP
// mismatch, and Logout all fall back to Anonymous by destroying the session.
type Manager struct {
	store         Store
	adminUsername string
	adminPassHash string
	timeout       time.Duration
	now           func() time.Time
}

type Option func(*Manager)

// WithClock replaces the time source. Tests use this to drive expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, adminUsername, adminPassHash string, timeout time.Duration, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		adminUsername: adminUsername,
		adminPassHash: adminPassHash,
		timeout:       timeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IssueCSRFToken returns the session's CSRF token, generating the session
// and/or token as needed. Idempotent for the session's lifetime. The returned
// session ID may differ from the input when a fresh session was created.
func (m *Manager) IssueCSRFToken(sessionID string) (token string, sid string, err error) {
	s, ok := m.store.Get(sessionID)
	if !ok {
		s = &Session{ID: newSessionID()}
	}
	if s.CSRFToken == "" {
		s.CSRFToken, err = newCSRFToken()
		if err != nil {
			return "", "", err
		}
		m.store.Put(s)
	}
	return s.CSRFToken, s.ID, nil
}

// ValidateCSRFToken fails closed: a missing session or missing stored token
// is invalid regardless of the submitted value.
func (m *Manager) ValidateCSRFToken(sessionID, submitted string) bool {
	s, ok := m.store.Get(sessionID)
	if !ok || s.CSRFToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(submitted)) == 1
}

// Authenticate checks the CSRF token, then the admin credentials. On success
// the session identifier is rotated to defeat fixation and the returned ID
// must replace the client's cookie. On failure no session state changes.
func (m *Manager) Authenticate(sessionID, username, password, csrfToken, sourceIP string) (string, error) {
	if !m.ValidateCSRFToken(sessionID, csrfToken) {
		return "", ErrInvalidRequest
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.adminUsername)) == 1
	passwordOK := bcrypt.CompareHashAndPassword([]byte(m.adminPassHash), []byte(password)) == nil
	if !usernameOK || !passwordOK {
		return "", ErrInvalidCredentials
	}

	m.store.Delete(sessionID)

	token, err := newCSRFToken()
	if err != nil {
		return "", err
	}
	s := &Session{
		ID:            newSessionID(),
		Authenticated: true,
		LoginTime:     m.now(),
		ClientIP:      sourceIP,
		CSRFToken:     token,
	}
	m.store.Put(s)
	return s.ID, nil
}

// Validate gates every privileged request. On success the login time is
// refreshed, giving sliding expiration. Timeout and IP mismatch destroy the
// session, so a retry with the same identifier reads as not authenticated.
func (m *Manager) Validate(sessionID, sourceIP string) (*Session, error) {
	s, ok := m.store.Get(sessionID)
	if !ok || !s.Authenticated {
		return nil, ErrNotAuthenticated
	}

	if m.now().Sub(s.LoginTime) > m.timeout {
		m.store.Delete(sessionID)
		return nil, ErrSessionExpired
	}

	if s.ClientIP != sourceIP {
		m.store.Delete(sessionID)
		return nil, ErrSecurityViolation
	}

	s.LoginTime = m.now()
	m.store.Put(s)
	return s, nil
}

// Logout destroys the session unconditionally, authenticated or not.
func (m *Manager) Logout(sessionID string) {
	m.store.Delete(sessionID)
}

func newSessionID() string {
	return uuid.NewString()
}

func newCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
