package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"planova.app/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/",
	"/healthz",
	"/readyz",
	"/metrics",
	"/api/auth/register",
	"/api/auth/login",
	"/api/auth/continue-with-google",
	"/api/auth/google",
	"/api/auth/session",
}

func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r.Header.Get(authHeader))
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "access denied, no token provided")
			return
		}

		identity, err := a.accounts.Authenticate(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				writeError(w, r, http.StatusUnauthorized, "invalid token")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken accepts both "Bearer <token>" and a bare token value.
func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return strings.TrimSpace(header[len(bearer):])
	}
	return header
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// identity returns the authenticated caller. withAuth guarantees it is set
// on every non-public path, so a miss is a programming error.
func identity(r *http.Request) (auth.Identity, bool) {
	return auth.IdentityFromContext(r.Context())
}
