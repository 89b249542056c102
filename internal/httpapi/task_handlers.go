package httpapi

import (
	"net/http"

	"planova.app/internal/ids"
	"planova.app/internal/planner"
)

func (a *API) handleTasksCollection(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "access denied, no token provided")
		return
	}
	switch r.Method {
	case http.MethodGet:
		tasks, err := a.store.Tasks().List(r.Context(), scopeFor(caller))
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": tasks})
	case http.MethodPost:
		var t planner.Task
		if err := decodeJSON(w, r, &t); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		t.ID = ids.New()
		t.OwnerID = caller.UserID
		t.Owner = nil
		if err := t.Normalize(); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		if err := a.store.Tasks().Create(r.Context(), &t); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "task.create", t.ID)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": t})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTaskResource(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/api/tasks/")
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
		t, err := a.store.Tasks().Find(r.Context(), id, caller.UserID)
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": t})
	case http.MethodPut:
		var t planner.Task
		if err := decodeJSON(w, r, &t); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		t.ID = id
		t.OwnerID = caller.UserID
		t.Owner = nil
		if err := t.Normalize(); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		if err := a.store.Tasks().Update(r.Context(), &t); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		updated, err := a.store.Tasks().Find(r.Context(), id, caller.UserID)
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "task.update", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
	case http.MethodDelete:
		if err := a.store.Tasks().Delete(r.Context(), id, caller.UserID); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "task.delete", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Task deleted successfully"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
