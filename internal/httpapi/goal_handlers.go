package httpapi

import (
	"net/http"

	"planova.app/internal/ids"
	"planova.app/internal/planner"
)

func (a *API) handleGoalsCollection(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "access denied, no token provided")
		return
	}
	switch r.Method {
	case http.MethodGet:
		goals, err := a.store.Goals().List(r.Context(), scopeFor(caller))
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": goals})
	case http.MethodPost:
		var g planner.Goal
		if err := decodeJSON(w, r, &g); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		g.ID = ids.New()
		g.OwnerID = caller.UserID
		g.Owner = nil
		if err := g.Normalize(); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		if err := a.store.Goals().Create(r.Context(), &g); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "goal.create", g.ID)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": g})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleGoalResource(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/api/goals/")
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
		g, err := a.store.Goals().Find(r.Context(), id, caller.UserID)
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": g})
	case http.MethodPut:
		var g planner.Goal
		if err := decodeJSON(w, r, &g); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		g.ID = id
		g.OwnerID = caller.UserID
		g.Owner = nil
		if err := g.Normalize(); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		if err := a.store.Goals().Update(r.Context(), &g); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		updated, err := a.store.Goals().Find(r.Context(), id, caller.UserID)
		if err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "goal.update", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
	case http.MethodDelete:
		if err := a.store.Goals().Delete(r.Context(), id, caller.UserID); err != nil {
			handlePlannerError(w, r, err)
			return
		}
		a.auditRecord(r, "goal.delete", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Goal deleted successfully"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
