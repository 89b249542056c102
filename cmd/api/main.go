package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"planova.app/internal/auth"
	"planova.app/internal/config"
	"planova.app/internal/httpapi"
	"planova.app/internal/obs"
	"planova.app/internal/planner"
)

var version = "0.3.1"

func main() {
	obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		db    *sql.DB
		users auth.UserStore
		store planner.Store
	)
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		users = auth.NewPGStore(db)
		store = planner.NewPGStore(db)
	} else {
		// In-memory stores keep local development free of external services.
		users = auth.NewMemoryStore()
		store = planner.NewMemoryStore()
	}

	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	opts := []auth.Option{}
	if cfg.GoogleEnabled() {
		provider := auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
		opts = append(opts, auth.WithGoogle(provider))
	}
	accounts := auth.NewService(users, codec, opts...)

	api := httpapi.New(accounts, store, httpapi.ReadyProbe{DB: db}, httpapi.Options{
		FrontendURL: cfg.FrontendURL,
		RateBurst:   cfg.RateBurst,
		RatePerSec:  cfg.RatePerSec,
	}, version)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting planova-api %s (%s) on %s", version, obs.BuildRevision(), srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
