package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"planova.app/internal/auth"
	"planova.app/internal/obs"
	"planova.app/internal/planner"
)

const maxRequestBody = 1 << 20

// ReadyProbe reports whether the API can serve traffic (for example by
// pinging the database).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options tunes the middleware stack.
type Options struct {
	FrontendURL string
	RateBurst   int
	RatePerSec  int
}

// API is the HTTP layer over the account service and the planner store.
type API struct {
	mux         *http.ServeMux
	accounts    *auth.Service
	store       planner.Store
	readyProbe  ReadyProbe
	frontendURL string
	rateBurst   int
	ratePerSec  int
	version     string
}

func New(accounts *auth.Service, store planner.Store, rp ReadyProbe, opts Options, version string) *API {
	a := &API{
		mux:         http.NewServeMux(),
		accounts:    accounts,
		store:       store,
		readyProbe:  rp,
		frontendURL: opts.FrontendURL,
		rateBurst:   opts.RateBurst,
		ratePerSec:  opts.RatePerSec,
		version:     version,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 10
	}

	// health/ready
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// accounts
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/continue-with-google", a.handleGoogleConsent)
	a.mux.HandleFunc("/api/auth/google", a.handleGoogleCallback)
	a.mux.HandleFunc("/api/auth/session", a.handleSession)
	a.mux.HandleFunc("/api/me", a.handleMe)
	a.mux.HandleFunc("/api/users", a.handleUsersCollection)
	a.mux.HandleFunc("/api/users/", a.handleUserResource)

	// planner resources
	a.mux.HandleFunc("/api/notes", a.handleNotesCollection)
	a.mux.HandleFunc("/api/notes/", a.handleNoteResource)
	a.mux.HandleFunc("/api/tasks", a.handleTasksCollection)
	a.mux.HandleFunc("/api/tasks/", a.handleTaskResource)
	a.mux.HandleFunc("/api/events", a.handleEventsCollection)
	a.mux.HandleFunc("/api/events/", a.handleEventResource)
	a.mux.HandleFunc("/api/goals", a.handleGoalsCollection)
	a.mux.HandleFunc("/api/goals/", a.handleGoalResource)
	a.mux.HandleFunc("/api/transactions", a.handleTransactionsCollection)
	a.mux.HandleFunc("/api/transactions/", a.handleTransactionResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, maxRequestBody)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = a.cors(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "planova-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
