package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the runtime configuration read from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	// Database: DATABASE_URL wins, otherwise DB_* components are assembled
	// by the database package.
	DatabaseURL string

	// Redis is optional; when RedisHost is empty the response cache and
	// rate limiter are disabled.
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// HMAC secrets for visitor fingerprints. ViewSecret is mandatory;
	// ReactionSecret falls back to ViewSecret so the two families can
	// share or split keys.
	ViewSecret     string
	ReactionSecret string

	// RetentionDays ages out unique-event rows; 0 disables the sweeper.
	RetentionDays int

	// Tracing
	OTLPEndpoint string
}

// Load reads configuration from environment variables. It fails hard when
// FINGERPRINT_SECRET is missing: defaulting the HMAC key would silently
// void the privacy property of the visitor fingerprints.
func Load() (*Config, error) {
	viewSecret := os.Getenv("FINGERPRINT_SECRET")
	if viewSecret == "" {
		return nil, fmt.Errorf("FINGERPRINT_SECRET environment variable is required")
	}

	reactionSecret := os.Getenv("REACTION_FINGERPRINT_SECRET")
	if reactionSecret == "" {
		reactionSecret = viewSecret
	}

	retentionDays := 0
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("RETENTION_DAYS must be a non-negative integer, got %q", v)
		}
		retentionDays = n
	}

	return &Config{
		Port:           getEnvOrDefault("PORT", "8788"),
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:        getEnvOrDefault("LOG_FILE", "server.log"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisHost:      os.Getenv("REDIS_HOST"),
		RedisPort:      os.Getenv("REDIS_PORT"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		ViewSecret:     viewSecret,
		ReactionSecret: reactionSecret,
		RetentionDays:  retentionDays,
		OTLPEndpoint:   os.Getenv("OTLP_ENDPOINT"),
	}, nil
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
