// Package config loads runtime configuration from environment variables with
// sensible defaults for local development.
package config

import (
	"os"
	"strings"
)

type Config struct {
	Port           string
	APIKey         string
	RedisAddr      string
	AllowedOrigins []string
}

// Load reads configuration from the environment. An empty RedisAddr disables
// the event mirror; an empty AllowedOrigins list allows any origin.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		APIKey:         getEnv("API_KEY", "dev-secret-key"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		AllowedOrigins: parseOrigins(os.Getenv("ALLOWED_ORIGINS")),
	}
}

func parseOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	trimmed := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			trimmed = append(trimmed, p)
		}
	}
	return trimmed
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
