package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Provider != "gemini" {
		t.Fatalf("expected default provider gemini, got %q", config.Provider)
	}
	if config.DefaultTTL != 5*time.Minute {
		t.Fatalf("expected default TTL 5m, got %v", config.DefaultTTL)
	}
	if config.GuideTypeTTL != 2*time.Hour {
		t.Fatalf("expected guide type TTL 2h, got %v", config.GuideTypeTTL)
	}
	if config.OCRTextTTL != 7*24*time.Hour {
		t.Fatalf("expected OCR text TTL 7d, got %v", config.OCRTextTTL)
	}
	if config.WorkerPoolSize != 4 {
		t.Fatalf("expected worker pool size 4, got %d", config.WorkerPoolSize)
	}
	if config.KeyMaxContent != 0 {
		t.Fatalf("expected key truncation off by default, got %d", config.KeyMaxContent)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CACHE_MAPPING_TTL", "30m")
	t.Setenv("CACHE_MAX_ENTRIES", "500")
	t.Setenv("GRADING_WORKER_POOL_SIZE", "8")
	t.Setenv("CACHE_KEY_MAX_CONTENT", "4096")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.MappingTTL != 30*time.Minute {
		t.Fatalf("expected mapping TTL 30m, got %v", config.MappingTTL)
	}
	if config.MaxCacheSize != 500 {
		t.Fatalf("expected max cache size 500, got %d", config.MaxCacheSize)
	}
	if config.WorkerPoolSize != 8 {
		t.Fatalf("expected worker pool size 8, got %d", config.WorkerPoolSize)
	}
	if config.KeyMaxContent != 4096 {
		t.Fatalf("expected key max content 4096, got %d", config.KeyMaxContent)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "nonexistent")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestLoadConfigRejectsZeroWorkers(t *testing.T) {
	t.Setenv("GRADING_WORKER_POOL_SIZE", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for zero worker pool size")
	}
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CACHE_DEFAULT_TTL", "soon")
	t.Setenv("CACHE_MAX_ENTRIES", "many")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.DefaultTTL != 5*time.Minute || config.MaxCacheSize != 10000 {
		t.Fatalf("expected defaults for malformed values, got %v / %d", config.DefaultTTL, config.MaxCacheSize)
	}
}

func TestTTLByOperation(t *testing.T) {
	config := &Config{
		GuideTypeTTL: 2 * time.Hour,
		MappingTTL:   time.Hour,
		GradingTTL:   time.Hour,
		OCRTextTTL:   7 * 24 * time.Hour,
	}

	ttls := config.TTLByOperation()
	if ttls["guide_type"] != 2*time.Hour {
		t.Fatalf("unexpected guide_type TTL %v", ttls["guide_type"])
	}
	if ttls["ocr_text"] != 7*24*time.Hour {
		t.Fatalf("unexpected ocr_text TTL %v", ttls["ocr_text"])
	}
	if len(ttls) != 4 {
		t.Fatalf("expected 4 operation TTLs, got %d", len(ttls))
	}
}
