// Package config loads runtime configuration from environment variables,
// with an optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the sync server.
type Config struct {
	// Port the HTTP server listens on.
	Port int

	// DataDir is where per-user databases live.
	DataDir string

	// JWTSecret signs session tokens. Must be at least 32 bytes.
	JWTSecret string

	// TokenTTL is how long session tokens stay valid.
	TokenTTL time.Duration

	// SyncAPIKey guards the flat project-wide document layout used by the
	// bulk sync bridge. Empty disables that surface entirely.
	SyncAPIKey string

	// RateLimitRPS caps requests per second across the server.
	RateLimitRPS float64

	// LogLevel is debug, info, warn or error.
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         envInt("PORT", 8080),
		DataDir:      envStr("DATA_DIR", "./data"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     envDuration("TOKEN_TTL", 24*time.Hour),
		SyncAPIKey:   os.Getenv("SYNC_API_KEY"),
		RateLimitRPS: envFloat("RATE_LIMIT_RPS", 50),
		LogLevel:     envStr("LOG_LEVEL", "info"),
	}

	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be set and at least 32 characters")
	}
	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
