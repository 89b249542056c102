package httpapi

import (
	"net/http"

	"planova.app/internal/ids"
	"planova.app/internal/planner"
)

func (a *API) handleNotesCollection(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "access denied, no token provided")
		return
	}
	switch r.Method {
	case http.MethodGet:
		notes, err := a.store.Notes().List(r.Context(), scopeFor(caller))
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": notes})
	case http.MethodPost:
		var n planner.Note
		if err := decodeJSON(w, r, &n); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		n.ID = ids.New()
		n.OwnerID = caller.UserID
		n.Owner = nil
		if err := n.Normalize(); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		if err := a.store.Notes().Create(r.Context(), &n); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "note.create", n.ID)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": n})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleNoteResource(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/api/notes/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	caller, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "access denied, no token provided")
		return
	}
	switch r.Method {
	case http.MethodGet:
		n, err := a.store.Notes().Find(r.Context(), id, caller.UserID)
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": n})
	case http.MethodPut:
		var n planner.Note
		if err := decodeJSON(w, r, &n); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		n.ID = id
		n.OwnerID = caller.UserID
		n.Owner = nil
		if err := n.Normalize(); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		if err := a.store.Notes().Update(r.Context(), &n); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		updated, err := a.store.Notes().Find(r.Context(), id, caller.UserID)
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "note.update", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
	case http.MethodDelete:
		if err := a.store.Notes().Delete(r.Context(), id, caller.UserID); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "note.delete", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Note deleted successfully"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
