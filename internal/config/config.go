// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of origins allowed to read the export and the
	// API description cross-origin. Defaults to ["http://localhost:8080"].
	CORSOrigins []string

	// AuthHeader names the request header in which the authenticating
	// reverse proxy passes the username. Defaults to "Remote-User".
	AuthHeader string

	// LoginURL is where unauthenticated requests are sent. Defaults to "/login".
	LoginURL string

	// MaxBodyBytes caps request body sizes. Defaults to 1 MiB.
	MaxBodyBytes int64

	// FetchMetadata turns website title/description loading on or off.
	// Defaults to true.
	FetchMetadata bool

	// MetadataTimeout bounds a single metadata fetch. Defaults to 5s.
	MetadataTimeout time.Duration

	// MetadataAllowPrivate lets metadata loading reach loopback, link-local
	// and private addresses. Defaults to false.
	MetadataAllowPrivate bool

	// MigrateOnStart applies pending migrations before serving. Defaults to true.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:8080")),
		AuthHeader:  getEnv("AUTH_HEADER", "Remote-User"),
		LoginURL:    getEnv("LOGIN_URL", "/login"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		return Config{}, invalid("MAX_BODY_BYTES", err)
	}
	if cfg.FetchMetadata, err = strconv.ParseBool(getEnv("FETCH_METADATA", "true")); err != nil {
		return Config{}, invalid("FETCH_METADATA", err)
	}
	if cfg.MetadataTimeout, err = time.ParseDuration(getEnv("METADATA_TIMEOUT", "5s")); err != nil || cfg.MetadataTimeout <= 0 {
		return Config{}, invalid("METADATA_TIMEOUT", err)
	}
	if cfg.MetadataAllowPrivate, err = strconv.ParseBool(getEnv("METADATA_ALLOW_PRIVATE", "false")); err != nil {
		return Config{}, invalid("METADATA_ALLOW_PRIVATE", err)
	}
	if cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "true")); err != nil {
		return Config{}, invalid("MIGRATE_ON_START", err)
	}

	return cfg, nil
}

func invalid(key string, err error) error {
	if err == nil {
		return fmt.Errorf("invalid value for %s: must be positive", key)
	}
	return fmt.Errorf("invalid value for %s: %w", key, err)
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
