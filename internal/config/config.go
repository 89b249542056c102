package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-driven setting the API server consumes.
// The JWT secret must be high entropy and is never logged.
type Config struct {
	Addr        string        `env:"PLANOVA_ADDR" envDefault:":8080"`
	PostgresDSN string        `env:"PLANOVA_PG_DSN"`
	JWTSecret   string        `env:"PLANOVA_JWT_SECRET"`
	TokenTTL    time.Duration `env:"PLANOVA_TOKEN_TTL" envDefault:"15m"`
	FrontendURL string        `env:"PLANOVA_FRONTEND_URL" envDefault:"http://localhost:5173"`

	GoogleClientID     string `env:"PLANOVA_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"PLANOVA_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"PLANOVA_GOOGLE_REDIRECT_URI"`

	RateBurst  int `env:"PLANOVA_RATE_BURST" envDefault:"20"`
	RatePerSec int `env:"PLANOVA_RATE_PER_SEC" envDefault:"10"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("PLANOVA_JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("PLANOVA_TOKEN_TTL must be greater than zero")
	}
	return cfg, nil
}

// GoogleEnabled reports whether the federated login flow is fully configured.
// The redirect URI must exactly match the value registered with Google.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURI != ""
}
