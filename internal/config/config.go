package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// app config: provider selection, cache TTLs, batch processing knobs
type Config struct {
	Provider string

	// cache
	DefaultTTL     time.Duration // generic entries
	GuideTypeTTL   time.Duration // guide-type determinations
	MappingTTL     time.Duration // submission-to-guide mappings
	GradingTTL     time.Duration // grading results
	OCRTextTTL     time.Duration // extracted document text, content-addressed
	SweepInterval  time.Duration
	MaxCacheSize   int
	// KeyMaxContent > 0 truncates content fed into cache keys to that many
	// runes. Long documents sharing a prefix then alias to one entry; off
	// (0, full-content fingerprints) unless explicitly enabled.
	KeyMaxContent int

	// batch processing
	WorkerPoolSize int
	CallTimeout    time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:       getEnvOrDefault("AI_PROVIDER", "gemini"),
		DefaultTTL:     getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		GuideTypeTTL:   getEnvDuration("CACHE_GUIDE_TYPE_TTL", 2*time.Hour),
		MappingTTL:     getEnvDuration("CACHE_MAPPING_TTL", time.Hour),
		GradingTTL:     getEnvDuration("CACHE_GRADING_TTL", time.Hour),
		OCRTextTTL:     getEnvDuration("CACHE_OCR_TEXT_TTL", 7*24*time.Hour),
		SweepInterval:  getEnvDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),
		MaxCacheSize:   getEnvInt("CACHE_MAX_ENTRIES", 10000),
		KeyMaxContent:  getEnvInt("CACHE_KEY_MAX_CONTENT", 0),
		WorkerPoolSize: getEnvInt("GRADING_WORKER_POOL_SIZE", 4),
		CallTimeout:    getEnvDuration("GRADING_CALL_TIMEOUT", 30*time.Second),
		MaxRetries:     getEnvInt("GRADING_MAX_RETRIES", 2),
		RetryBackoff:   getEnvDuration("GRADING_RETRY_BACKOFF", 500*time.Millisecond),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	if config.WorkerPoolSize < 1 {
		return errors.New("GRADING_WORKER_POOL_SIZE must be at least 1")
	}
	if config.MaxRetries < 0 {
		return errors.New("GRADING_MAX_RETRIES must not be negative")
	}
	return nil
}

// TTLByOperation returns the configured TTL for a memoized operation name.
func (c *Config) TTLByOperation() map[string]time.Duration {
	return map[string]time.Duration{
		"guide_type": c.GuideTypeTTL,
		"mapping":    c.MappingTTL,
		"grading":    c.GradingTTL,
		"ocr_text":   c.OCRTextTTL,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
