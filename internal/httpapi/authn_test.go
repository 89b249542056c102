package httpapi

import "testing"

func TestExtractToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"  Bearer   abc.def.ghi  ", "abc.def.ghi"},
		{"abc.def.ghi", "abc.def.ghi"},
		{"", ""},
		{"Bearer ", ""},
	}
	for _, tc := range cases {
		if got := extractToken(tc.header); got != tc.want {
			t.Errorf("extractToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestIsPublicPath(t *testing.T) {
	public := []string{
		"/", "/healthz", "/readyz", "/metrics",
		"/api/auth/register", "/api/auth/login",
		"/api/auth/google", "/api/auth/continue-with-google", "/api/auth/session",
	}
	for _, p := range public {
		if !isPublicPath(p) {
			t.Errorf("expected %s to be public", p)
		}
	}
	private := []string{"/api/notes", "/api/me", "/api/users", "/api/notes/abc"}
	for _, p := range private {
		if isPublicPath(p) {
			t.Errorf("expected %s to be protected", p)
		}
	}
}
