package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

const defaultSessionCodeTTL = 2 * time.Minute

// SessionCodes hands out single-use codes for completing a federated login.
// The OAuth callback redirects the browser with one of these instead of the
// token itself, so the token never appears in a URL where history, referrer
// headers or access logs could capture it. The client immediately trades the
// code for the real token over POST.
type SessionCodes struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	codes map[string]sessionCode
}

type sessionCode struct {
	userID    string
	expiresAt time.Time
}

// NewSessionCodes creates a code store with the given lifetime.
func NewSessionCodes(ttl time.Duration) *SessionCodes {
	if ttl <= 0 {
		ttl = defaultSessionCodeTTL
	}
	return &SessionCodes{
		ttl:   ttl,
		now:   time.Now,
		codes: make(map[string]sessionCode),
	}
}

// Issue mints a fresh single-use code bound to the user.
func (s *SessionCodes) Issue(userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.codes[code] = sessionCode{
		userID:    userID,
		expiresAt: s.now().Add(s.ttl),
	}
	return code, nil
}

// Redeem consumes the code and returns the bound user id. Unknown, expired
// and already-used codes all fail the same way.
func (s *SessionCodes) Redeem(code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[code]
	if !ok {
		return "", ErrInvalidToken
	}
	delete(s.codes, code)
	if s.now().After(entry.expiresAt) {
		return "", ErrInvalidToken
	}
	return entry.userID, nil
}

func (s *SessionCodes) purgeLocked() {
	now := s.now()
	for code, entry := range s.codes {
		if now.After(entry.expiresAt) {
			delete(s.codes, code)
		}
	}
}
