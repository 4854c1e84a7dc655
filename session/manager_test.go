package session

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	testAdmin    = "admin"
	testPassword = "hunter2-but-longer"
	testIP       = "192.0.2.10"
	otherIP      = "198.51.100.7"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	clock := &fakeClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager(NewMemoryStore(), testAdmin, string(hash), 30*time.Minute, WithClock(clock.Now))
	return m, clock
}

// login walks the full CSRF + credential flow and returns the authenticated
// session ID.
func login(t *testing.T, m *Manager) string {
	t.Helper()
	token, sid, err := m.IssueCSRFToken("")
	if err != nil {
		t.Fatalf("issue csrf: %v", err)
	}
	newID, err := m.Authenticate(sid, testAdmin, testPassword, token, testIP)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	return newID
}

func TestIssueCSRFTokenIdempotent(t *testing.T) {
	m, _ := newTestManager(t)

	token1, sid, err := m.IssueCSRFToken("")
	if err != nil {
		t.Fatalf("issue csrf: %v", err)
	}
	token2, sid2, err := m.IssueCSRFToken(sid)
	if err != nil {
		t.Fatalf("issue csrf again: %v", err)
	}
	if sid != sid2 {
		t.Errorf("session id changed across issuance: %q vs %q", sid, sid2)
	}
	if token1 != token2 {
		t.Errorf("token not idempotent within session: %q vs %q", token1, token2)
	}
	if len(token1) != 64 {
		t.Errorf("expected 256-bit hex token, got %d chars", len(token1))
	}
}

func TestAuthenticateRejectsBadCSRF(t *testing.T) {
	m, _ := newTestManager(t)
	_, sid, err := m.IssueCSRFToken("")
	if err != nil {
		t.Fatalf("issue csrf: %v", err)
	}

	// Correct credentials, wrong token: must fail and must not create an
	// authenticated session.
	if _, err := m.Authenticate(sid, testAdmin, testPassword, "deadbeef", testIP); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := m.Validate(sid, testIP); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("session mutated by failed authenticate: %v", err)
	}

	// Missing session: fails closed.
	if _, err := m.Authenticate("no-such-session", testAdmin, testPassword, "anything", testIP); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for missing session, got %v", err)
	}
}

func TestAuthenticateWrongCredentials(t *testing.T) {
	m, _ := newTestManager(t)
	token, sid, err := m.IssueCSRFToken("")
	if err != nil {
		t.Fatalf("issue csrf: %v", err)
	}

	if _, err := m.Authenticate(sid, testAdmin, "wrong", token, testIP); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := m.Validate(sid, testIP); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("failed login must not create a session: %v", err)
	}

	// Retry with correct credentials on the same session succeeds.
	newID, err := m.Authenticate(sid, testAdmin, testPassword, token, testIP)
	if err != nil {
		t.Fatalf("retry authenticate: %v", err)
	}
	if _, err := m.Validate(newID, testIP); err != nil {
		t.Errorf("validate after login: %v", err)
	}
}

func TestAuthenticateRotatesSessionID(t *testing.T) {
	m, _ := newTestManager(t)
	token, sid, err := m.IssueCSRFToken("")
	if err != nil {
		t.Fatalf("issue csrf: %v", err)
	}

	newID, err := m.Authenticate(sid, testAdmin, testPassword, token, testIP)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if newID == sid {
		t.Fatal("session id not rotated on login")
	}
	if _, err := m.Validate(sid, testIP); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("pre-login session id still usable: %v", err)
	}
}

func TestSessionTimeout(t *testing.T) {
	m, clock := newTestManager(t)
	sid := login(t, m)

	clock.Advance(31 * time.Minute)
	if _, err := m.Validate(sid, testIP); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	// Expiry destroys the session, so the same identifier now reads as
	// anonymous.
	if _, err := m.Validate(sid, testIP); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated after destruction, got %v", err)
	}
}

func TestSlidingExpiration(t *testing.T) {
	m, clock := newTestManager(t)
	sid := login(t, m)

	// Six requests 20 minutes apart: 120 minutes elapsed, never idle past
	// the 30 minute limit.
	for i := 0; i < 6; i++ {
		clock.Advance(20 * time.Minute)
		if _, err := m.Validate(sid, testIP); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
}

func TestIPPinning(t *testing.T) {
	m, clock := newTestManager(t)
	sid := login(t, m)

	// Fresh login time must not matter.
	clock.Advance(time.Minute)
	if _, err := m.Validate(sid, otherIP); !errors.Is(err, ErrSecurityViolation) {
		t.Fatalf("expected ErrSecurityViolation, got %v", err)
	}
	if _, err := m.Validate(sid, testIP); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("hijack detection must destroy the session: %v", err)
	}
}

func TestLogoutUnconditional(t *testing.T) {
	m, _ := newTestManager(t)
	sid := login(t, m)

	m.Logout(sid)
	if _, err := m.Validate(sid, testIP); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated after logout, got %v", err)
	}

	// Logging out an unknown session is a no-op, not a panic.
	m.Logout("never-existed")
}

func TestValidateCSRFTokenFailsClosed(t *testing.T) {
	m, _ := newTestManager(t)

	if m.ValidateCSRFToken("missing", "whatever") {
		t.Error("missing session must not validate")
	}

	_, sid, err := m.IssueCSRFToken("")
	if err != nil {
		t.Fatalf("issue csrf: %v", err)
	}
	if m.ValidateCSRFToken(sid, "") {
		t.Error("empty submitted token must not validate")
	}
}
