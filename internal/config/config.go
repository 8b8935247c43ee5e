package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	StudyBatchSize   int
	ReviewRetries    int
	RequestTimeoutMS int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:studydeck.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		StudyBatchSize:   envIntOr("STUDY_BATCH_SIZE", 20),
		ReviewRetries:    envIntOr("REVIEW_RETRIES", 3),
		RequestTimeoutMS: envIntOr("REQUEST_TIMEOUT_MS", 30000),
	}
}

// Validate reports configuration values the server cannot start with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.StudyBatchSize < 1 {
		return fmt.Errorf("STUDY_BATCH_SIZE must be at least 1, got %d", c.StudyBatchSize)
	}
	if c.ReviewRetries < 1 {
		return fmt.Errorf("REVIEW_RETRIES must be at least 1, got %d", c.ReviewRetries)
	}
	if c.RequestTimeoutMS < 100 {
		return fmt.Errorf("REQUEST_TIMEOUT_MS must be at least 100, got %d", c.RequestTimeoutMS)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
