package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// OCR
	OCRLanguage        string
	OCRClientPoolSize  int
	DefaultPSM         int
	DefaultOEM         int
	FallbackPatterns   bool
	RegistryKeyMinLen  int

	// Face pipeline
	CascadePath        string
	BackbonePath       string
	FaceQualityFloor   float64
	HighQualityCutoff  float64
	LowQualityCutoff   float64
	ThresholdHigh      float64
	ThresholdBase      float64
	ThresholdLow       float64
	SimilarityScales   []float64

	// Collaborators
	DatabaseDSN        string
	RedisAddr          string
	RedisCacheTTL      time.Duration
	AzureAccountName   string
	AzureAccountKey    string
	PhotoFetchTimeout  time.Duration
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureConfigured reports whether blob-reference photos can be resolved;
// inline photos always work.
func (c *Config) AzureConfigured() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		OCRLanguage:       getEnvOrDefault("OCR_LANGUAGE", "eng"),
		OCRClientPoolSize: int(parseIntOrDefault("OCR_CLIENT_POOL_SIZE", 4)),
		DefaultPSM:        int(parseIntOrDefault("OCR_DEFAULT_PSM", 6)),
		DefaultOEM:        int(parseIntOrDefault("OCR_DEFAULT_OEM", 3)),
		FallbackPatterns:  parseBoolOrDefault("OCR_FALLBACK_PATTERNS", true),
		RegistryKeyMinLen: int(parseIntOrDefault("REGISTRY_KEY_MIN_LENGTH", 13)),

		CascadePath:       getEnvOrDefault("FACE_CASCADE_PATH", "haarcascade_frontalface_default.xml"),
		BackbonePath:      getEnvOrDefault("FACE_BACKBONE_PATH", "models/resnet50_embed.onnx"),
		FaceQualityFloor:  parseFloatOrDefault("FACE_QUALITY_FLOOR", 0.3),
		HighQualityCutoff: parseFloatOrDefault("FACE_HIGH_QUALITY_CUTOFF", 0.8),
		LowQualityCutoff:  parseFloatOrDefault("FACE_LOW_QUALITY_CUTOFF", 0.5),
		ThresholdHigh:     parseFloatOrDefault("SIMILARITY_THRESHOLD_HIGH_QUALITY", 0.85),
		ThresholdBase:     parseFloatOrDefault("SIMILARITY_THRESHOLD_BASE", 0.90),
		ThresholdLow:      parseFloatOrDefault("SIMILARITY_THRESHOLD_LOW_QUALITY", 0.95),
		SimilarityScales:  []float64{0.8, 1.0, 1.2},

		DatabaseDSN:       os.Getenv("DATABASE_DSN"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisCacheTTL:     parseDurationOrDefault("REDIS_CACHE_TTL", 5*time.Minute),
		AzureAccountName:  os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:   os.Getenv("AZURE_STORAGE_KEY"),
		PhotoFetchTimeout: parseDurationOrDefault("PHOTO_FETCH_TIMEOUT", 15*time.Second),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.OCRClientPoolSize < 1 {
		return nil, fmt.Errorf("OCR_CLIENT_POOL_SIZE must be >= 1 (got %d)", cfg.OCRClientPoolSize)
	}
	if cfg.RegistryKeyMinLen < 1 {
		return nil, fmt.Errorf("REGISTRY_KEY_MIN_LENGTH must be >= 1 (got %d)", cfg.RegistryKeyMinLen)
	}
	if cfg.FaceQualityFloor < 0 || cfg.FaceQualityFloor > 1 {
		return nil, fmt.Errorf("FACE_QUALITY_FLOOR must be in [0,1] (got %f)", cfg.FaceQualityFloor)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
