package httpapi

import (
	"net/http"
	"strings"
	"time"

	"planova.app/internal/audit"
	"planova.app/internal/auth"
)

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionRequest struct {
	Code string `json:"code"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := a.accounts.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "account.register", map[string]any{
		"user_id": session.User.ID,
		"role":    session.User.Role,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "User registered successfully",
		"token":   session.Token,
		"role":    session.User.Role,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := a.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "account.login", map[string]any{
		"user_id": session.User.ID,
	})

	writeSession(w, session)
}

// handleGoogleConsent bounces the browser to the Google consent screen.
func (a *API) handleGoogleConsent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	url, err := a.accounts.ConsentURL()
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// handleGoogleCallback receives the provider redirect. The browser is sent
// back to the frontend with a short-lived single-use session code; the
// real token is only ever issued over POST /api/auth/session, so it never
// lands in a URL, browser history or referrer header.
func (a *API) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		http.Redirect(w, r, a.frontendURL+"/login?error=google", http.StatusFound)
		return
	}

	user, sessionCode, err := a.accounts.GoogleLogin(r.Context(), code)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "account.google_login", map[string]any{
		"user_id": user.ID,
	})

	target := a.frontendURL + "/dashboard"
	if user.Role == auth.RoleAdmin {
		target = a.frontendURL + "/admin"
	}
	http.Redirect(w, r, target+"?code="+sessionCode, http.StatusFound)
}

// handleSession trades the redirect code for a token.
func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req sessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := a.accounts.RedeemSession(r.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "account.session_redeem", map[string]any{
		"user_id": session.User.ID,
	})

	writeSession(w, session)
}

func writeSession(w http.ResponseWriter, session auth.Session) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Login successful",
		"token":     session.Token,
		"fullName":  session.User.FullName,
		"email":     session.User.Email,
		"role":      session.User.Role,
		"createdAt": session.User.CreatedAt.UTC().Format(time.RFC3339),
	})
}
