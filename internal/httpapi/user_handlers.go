package httpapi

import (
	"net/http"

	"planova.app/internal/audit"
	"planova.app/internal/auth"
)

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	caller, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "access denied, no token provided")
		return
	}
	user, err := a.accounts.Me(r.Context(), caller)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user.View(),
	})
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	caller, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "access denied, no token provided")
		return
	}
	users, err := a.accounts.ListAccounts(r.Context(), caller)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	views := make([]auth.AccountView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"total":   len(views),
		"users":   views,
	})
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/api/users/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	caller, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "access denied, no token provided")
		return
	}

	if err := a.accounts.DeleteAccount(r.Context(), caller, id); err != nil {
		handleAuthError(w, r, err)
		return
	}
	// The account row is gone; sweep the owned records too. On Postgres the
	// cascade has already handled this and the purge is a no-op.
	if err := a.store.PurgeOwner(r.Context(), id); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "account.delete", map[string]any{
		"target_id": id,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User deleted successfully",
	})
}
