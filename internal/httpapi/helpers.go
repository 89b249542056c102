package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"planova.app/internal/audit"
	"planova.app/internal/auth"
	"planova.app/internal/obs"
	"planova.app/internal/planner"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"success": false,
		"message": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleAuthError maps account service errors to HTTP responses. Upstream
// provider failures are logged in full but reported generically.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusBadRequest, "invalid email or password")
	case errors.Is(err, auth.ErrFederatedOnly):
		writeError(w, r, http.StatusBadRequest, "this account uses Google login, please continue with Google")
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, r, http.StatusBadRequest, "user already exists")
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "all fields are required")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "access denied")
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, auth.ErrFederationDisabled):
		writeError(w, r, http.StatusServiceUnavailable, "google login is not configured")
	case errors.Is(err, auth.ErrUpstream):
		obs.LogRequest(map[string]any{
			"level":      "error",
			"msg":        "identity provider error",
			"error":      err.Error(),
			"request_id": RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusBadRequest, "google sign-in failed")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func handlePlannerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, planner.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// resourceID pulls the trailing id segment from a path like /api/notes/{id}.
func resourceID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func (a *API) auditRecord(r *http.Request, event, recordID string) {
	_ = audit.LogEvent(r.Context(), event, map[string]any{
		"record_id": recordID,
	})
}

// scopeFor builds the read scope for the caller: admins see every owner's
// records, everyone else only their own. Mutations never use the admin scope.
func scopeFor(id auth.Identity) planner.Scope {
	return planner.Scope{OwnerID: id.UserID, All: id.IsAdmin()}
}
