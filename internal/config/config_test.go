package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.OCRLanguage != "eng" {
		t.Errorf("Expected eng, got %q", cfg.OCRLanguage)
	}
	if cfg.DefaultPSM != 6 || cfg.DefaultOEM != 3 {
		t.Errorf("Expected PSM 6 / OEM 3, got %d/%d", cfg.DefaultPSM, cfg.DefaultOEM)
	}
	if !cfg.FallbackPatterns {
		t.Error("Expected fallback patterns enabled by default")
	}
	if cfg.RegistryKeyMinLen != 13 {
		t.Errorf("Expected min key length 13, got %d", cfg.RegistryKeyMinLen)
	}
	if cfg.ThresholdHigh != 0.85 || cfg.ThresholdBase != 0.90 || cfg.ThresholdLow != 0.95 {
		t.Errorf("Unexpected thresholds %f/%f/%f", cfg.ThresholdHigh, cfg.ThresholdBase, cfg.ThresholdLow)
	}
	if len(cfg.SimilarityScales) != 3 {
		t.Errorf("Expected 3 similarity scales, got %v", cfg.SimilarityScales)
	}
	if cfg.AzureConfigured() {
		t.Error("Expected Azure to be unconfigured by default")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OCR_FALLBACK_PATTERNS", "false")
	t.Setenv("REGISTRY_KEY_MIN_LENGTH", "10")
	t.Setenv("SIMILARITY_THRESHOLD_BASE", "0.88")
	t.Setenv("REQUEST_TIMEOUT", "30s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %q", cfg.Port)
	}
	if cfg.FallbackPatterns {
		t.Error("Expected fallback patterns disabled")
	}
	if cfg.RegistryKeyMinLen != 10 {
		t.Errorf("Expected min key length 10, got %d", cfg.RegistryKeyMinLen)
	}
	if cfg.ThresholdBase != 0.88 {
		t.Errorf("Expected threshold 0.88, got %f", cfg.ThresholdBase)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.RequestTimeout)
	}
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	tests := []string{"not-a-port", "0", "70000", "-1"}
	for _, port := range tests {
		t.Run(port, func(t *testing.T) {
			t.Setenv("PORT", port)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("Expected error for PORT=%q", port)
			}
		})
	}
}

func TestLoadFromEnv_InvalidQualityFloor(t *testing.T) {
	t.Setenv("FACE_QUALITY_FLOOR", "1.5")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for out-of-range quality floor")
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 127.0.0.1 ", Port: " 8080 "}
	if got := cfg.ServerAddress(); got != "127.0.0.1:8080" {
		t.Errorf("Expected 127.0.0.1:8080, got %q", got)
	}
}

func TestParseBoolOrDefault(t *testing.T) {
	t.Setenv("SOME_FLAG", "garbage")
	if !parseBoolOrDefault("SOME_FLAG", true) {
		t.Error("Expected default on unparseable value")
	}

	t.Setenv("SOME_FLAG", "false")
	if parseBoolOrDefault("SOME_FLAG", true) {
		t.Error("Expected explicit false to win")
	}
}
