package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                         "/",
		"/metrics":                 "/metrics",
		"/api/notes":               "/api/notes",
		"/api/notes/01HZX3":        "/api/notes/:id",
		"/api/users/abc":           "/api/users/:id",
		"/api/notes/abc/extra":     "/api/notes/abc/extra",
		"/api/tasks/abc?pretty=1":  "/api/tasks/:id",
		"/api/auth/login":          "/api/auth/login",
		"/api/transactions/01HZX3": "/api/transactions/:id",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
