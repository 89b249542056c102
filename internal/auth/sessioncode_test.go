package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSessionCodesExpire(t *testing.T) {
	codes := NewSessionCodes(time.Minute)
	current := time.Now()
	codes.now = func() time.Time { return current }

	code, err := codes.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := codes.Redeem(code); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired code, got %v", err)
	}
}

func TestSessionCodesPurgeOnIssue(t *testing.T) {
	codes := NewSessionCodes(time.Minute)
	current := time.Now()
	codes.now = func() time.Time { return current }

	stale, err := codes.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	current = current.Add(5 * time.Minute)
	if _, err := codes.Issue("user-2"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := codes.codes[stale]; ok {
		t.Fatal("stale code should have been purged")
	}
}

func TestSessionCodesDistinct(t *testing.T) {
	codes := NewSessionCodes(time.Minute)
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		code, err := codes.Issue("user-1")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if seen[code] {
			t.Fatal("duplicate code issued")
		}
		seen[code] = true
	}
}
