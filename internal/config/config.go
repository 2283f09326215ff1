// internal/config/config.go
package config

import (
	"os"
)

// Service identity reported in traces and logs.
const (
	ServiceName    = "stockbook"
	ServiceVersion = "0.1.0"
)

// Config holds the environment-specific settings. DATABASE_URL and
// OTEL_ENDPOINT are optional: an empty database URL selects the
// in-memory row store, an empty endpoint disables trace export.
type Config struct {
	DatabaseURL   string
	Port          string
	OtelEndpoint  string
	AdminUser     string
	AdminPassword string
}

// Load builds a Config from environment variables with defaults.
func Load() *Config {
	return &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Port:          getEnv("PORT", "8080"),
		OtelEndpoint:  os.Getenv("OTEL_ENDPOINT"),
		AdminUser:     getEnv("ADMIN_USER", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
