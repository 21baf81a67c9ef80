package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	TokenTTL         time.Duration
	LogLevel         string
	PushEndpoint     string
	PushAPIKey       string
	ReminderInterval time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "3000"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		// Push delivery is optional: with no endpoint configured the
		// dispatcher records dispatches but skips the outbound call.
		PushEndpoint: os.Getenv("PUSH_ENDPOINT"),
		PushAPIKey:   os.Getenv("PUSH_API_KEY"),
	}

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.JWTSecret = os.Getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	ttlHours, err := strconv.Atoi(getEnvOrDefault("TOKEN_TTL_HOURS", "168"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_HOURS must be a positive integer")
	}
	cfg.TokenTTL = time.Duration(ttlHours) * time.Hour

	reminderMinutes, err := strconv.Atoi(getEnvOrDefault("REMINDER_INTERVAL_MINUTES", "15"))
	if err != nil || reminderMinutes <= 0 {
		return nil, fmt.Errorf("REMINDER_INTERVAL_MINUTES must be a positive integer")
	}
	cfg.ReminderInterval = time.Duration(reminderMinutes) * time.Minute

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
