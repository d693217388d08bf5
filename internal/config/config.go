package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// Remote mirror; empty RemoteDatabaseURL disables cloud sync.
	RemoteDatabaseURL string
	HouseholdID       string
	SyncQuietWindow   time.Duration

	// External question-generation service.
	GenAIAPIURL string
	GenAIAPIKey string

	// Parent gate.
	ParentPassword  string
	SessionSecret   string
	SessionDuration time.Duration

	// Backup email via SES; empty SESFromEmail disables it.
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	ParentEmail  string
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./studyquest.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		RemoteDatabaseURL: getEnv("REMOTE_DATABASE_URL", ""),
		HouseholdID:       getEnv("HOUSEHOLD_ID", "default-household"),
		SyncQuietWindow:   getEnvDuration("SYNC_DEBOUNCE_MS", 1500) * time.Millisecond,

		GenAIAPIURL: getEnv("GENAI_API_URL", ""),
		GenAIAPIKey: getEnv("GENAI_API_KEY", ""),

		ParentPassword:  getEnv("PARENT_PASSWORD", "1234"),
		SessionSecret:   getEnv("SESSION_SECRET", "studyquest-dev-secret"),
		SessionDuration: 24 * time.Hour,

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "StudyQuest"),
		ParentEmail:  getEnv("PARENT_EMAIL", ""),
	}
}

// RemoteConfigured reports whether a remote mirror endpoint is set.
func (c *Config) RemoteConfigured() bool {
	return c.RemoteDatabaseURL != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration reads an integer environment variable as a duration count
func getEnvDuration(key string, defaultValue int64) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(defaultValue)
}
