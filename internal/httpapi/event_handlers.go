package httpapi

import (
	"net/http"

	"planova.app/internal/ids"
	"planova.app/internal/planner"
)

func (a *API) handleEventsCollection(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "access denied, no token provided")
		return
	}
	switch r.Method {
	case http.MethodGet:
		events, err := a.store.Events().List(r.Context(), scopeFor(caller))
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": events})
	case http.MethodPost:
		var e planner.Event
		if err := decodeJSON(w, r, &e); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		e.ID = ids.New()
		e.OwnerID = caller.UserID
		e.Owner = nil
		if err := e.Normalize(); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		if err := a.store.Events().Create(r.Context(), &e); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "event.create", e.ID)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": e})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEventResource(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/api/events/")
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
		e, err := a.store.Events().Find(r.Context(), id, caller.UserID)
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": e})
	case http.MethodPut:
		var e planner.Event
		if err := decodeJSON(w, r, &e); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		e.ID = id
		e.OwnerID = caller.UserID
		e.Owner = nil
		if err := e.Normalize(); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		if err := a.store.Events().Update(r.Context(), &e); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		updated, err := a.store.Events().Find(r.Context(), id, caller.UserID)
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "event.update", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
	case http.MethodDelete:
		if err := a.store.Events().Delete(r.Context(), id, caller.UserID); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "event.delete", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Event deleted successfully"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
