package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	// Database: sqlite (default), postgres or mysql
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// Device API tokens
	TokenSecret string
	TokenTTL    time.Duration

	// Shared secret for the admin endpoints
	AdminSecret string

	// Scheduler tuning
	QueueLimit      int
	FreshnessWindow time.Duration
	SweepInterval   time.Duration

	// Practice reminder emails (SES)
	SESRegion         string
	SESFromEmail      string
	SESFromName       string
	ReminderThreshold int
	ReminderHourUTC   int

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	return &Config{
		ServerPort:        getEnv("PORT", "8080"),
		DatabaseType:      getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:       getEnv("DB_URL", ""),
		DatabasePath:      getEnv("DB_PATH", "./vocabdrill.db"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./migrations"),
		TokenSecret:       getEnv("TOKEN_SECRET", ""),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 30*24*time.Hour),
		AdminSecret:       getEnv("ADMIN_SECRET", ""),
		QueueLimit:        getEnvInt("QUEUE_LIMIT", 20),
		FreshnessWindow:   getEnvDuration("QUEUE_FRESHNESS_WINDOW", 15*time.Minute),
		SweepInterval:     getEnvDuration("QUEUE_SWEEP_INTERVAL", 30*time.Minute),
		SESRegion:         getEnv("SES_REGION", "eu-west-1"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "VocabDrill"),
		ReminderThreshold: getEnvInt("REMINDER_DUE_THRESHOLD", 10),
		ReminderHourUTC:   getEnvInt("REMINDER_HOUR_UTC", 7),
		Debug:             getEnv("DEBUG", "") != "",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable (e.g. "15m") or
// returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		log.Printf("Invalid value for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}
