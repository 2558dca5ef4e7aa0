package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL      string
	Port             int
	EventBufferSize  int
	SessionPurgeSpec string // cron expression for the expired-session purge
}

// Load loads configuration from environment variables, with a .env file
// as an optional source for local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	config := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             intEnv("PORT", 5000),
		EventBufferSize:  intEnv("EVENT_BUFFER_SIZE", 100),
		SessionPurgeSpec: os.Getenv("SESSION_PURGE_SPEC"),
	}

	if config.DatabaseURL == "" {
		config.DatabaseURL = "host=localhost port=5432 user=postgres password=postgres dbname=splitledger sslmode=disable"
	}
	if config.SessionPurgeSpec == "" {
		config.SessionPurgeSpec = "0 4 * * *"
	}

	return config
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer in environment, using fallback", "key", key, "value", raw)
		return fallback
	}
	return v
}
