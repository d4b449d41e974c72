package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	// ExternalBaseURL is the scheme://host[:port] agents use to reach
	// this service; resolved configuration URLs are built from it.
	ExternalBaseURL string
	// ResolveRateLimitPerSecond caps by-tag polling per organization.
	// Zero disables the limit.
	ResolveRateLimitPerSecond int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	port := getEnv("PORT", "8080")
	dbURL := getEnv("DATABASE_URL", "")
	redisURL := getEnv("REDIS_URL", "")
	baseURL := getEnv("EXTERNAL_BASE_URL", "http://localhost:"+port)
	resolveLimit := getEnvInt("RESOLVE_RATE_LIMIT_PER_SECOND", 10)

	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	return &Config{
		Port:                      port,
		DatabaseURL:               dbURL,
		RedisURL:                  redisURL,
		ExternalBaseURL:           baseURL,
		ResolveRateLimitPerSecond: resolveLimit,
	}, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
