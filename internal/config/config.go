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
	ExtractTimeout     time.Duration
	SaveTimeout        time.Duration
	MaxRequestBodySize int64

	// Scoring thresholds. Tuned against outdoor/glare photography; exposed
	// as configuration rather than hardcoded in the matcher.
	SimilarityThreshold float64
	VerifyScore         int
	LowScore            int
	TextSampleLength    int

	// ScanDelay is the yield inserted between photos in a batch so extraction
	// never monopolizes the host.
	ScanDelay time.Duration

	// OCRLanguage is passed to the Tesseract client.
	OCRLanguage string

	// Photo source selection: "azure", "local" or "http".
	PhotoSource     string
	AzureAccount    string
	AzureKey        string
	AzureContainer  string
	LocalPhotoRoot  string
	ManifestBaseURL string

	// MySQLDSN selects the durable proof store; empty falls back to the
	// in-memory store.
	MySQLDSN string

	// Digest settings for persisted photo proofs.
	DigestMaxDimension int
	DigestQuality      int
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ExtractTimeout:     parseDurationOrDefault("EXTRACT_TIMEOUT", 20*time.Second),
		SaveTimeout:        parseDurationOrDefault("SAVE_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		SimilarityThreshold: parseFloatOrDefault("SIMILARITY_THRESHOLD", 65.0),
		VerifyScore:         int(parseIntOrDefault("VERIFY_SCORE", 40)),
		LowScore:            int(parseIntOrDefault("LOW_SCORE", 15)),
		TextSampleLength:    int(parseIntOrDefault("TEXT_SAMPLE_LENGTH", 280)),

		ScanDelay:   parseDurationOrDefault("SCAN_DELAY", 150*time.Millisecond),
		OCRLanguage: getEnvOrDefault("OCR_LANGUAGE", "eng"),

		PhotoSource:     getEnvOrDefault("PHOTO_SOURCE", "local"),
		AzureAccount:    os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureKey:        os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainer:  getEnvOrDefault("AZURE_STORAGE_CONTAINER", "pop-photos"),
		LocalPhotoRoot:  getEnvOrDefault("LOCAL_PHOTO_ROOT", "./photos"),
		ManifestBaseURL: os.Getenv("MANIFEST_BASE_URL"),

		MySQLDSN: os.Getenv("MYSQL_DSN"),

		DigestMaxDimension: int(parseIntOrDefault("DIGEST_MAX_DIMENSION", 512)),
		DigestQuality:      int(parseIntOrDefault("DIGEST_QUALITY", 85)),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ExtractTimeout <= 0 || cfg.SaveTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, extract=%s, save=%s)",
			cfg.RequestTimeout, cfg.ExtractTimeout, cfg.SaveTimeout)
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 100 {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be in (0,100] (got %g)", cfg.SimilarityThreshold)
	}
	if cfg.VerifyScore < 0 || cfg.VerifyScore > 100 || cfg.LowScore < 0 || cfg.LowScore > cfg.VerifyScore {
		return nil, fmt.Errorf("score thresholds out of range (verify=%d, low=%d)", cfg.VerifyScore, cfg.LowScore)
	}
	switch cfg.PhotoSource {
	case "azure", "local", "http":
	default:
		return nil, fmt.Errorf("invalid PHOTO_SOURCE: %q", cfg.PhotoSource)
	}
	if cfg.PhotoSource == "azure" && (cfg.AzureAccount == "" || cfg.AzureKey == "") {
		return nil, fmt.Errorf("PHOTO_SOURCE=azure requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
	}
	if cfg.PhotoSource == "http" && cfg.ManifestBaseURL == "" {
		return nil, fmt.Errorf("PHOTO_SOURCE=http requires MANIFEST_BASE_URL")
	}
	if cfg.DigestMaxDimension <= 0 || cfg.DigestQuality < 1 || cfg.DigestQuality > 100 {
		return nil, fmt.Errorf("digest settings out of range (dimension=%d, quality=%d)",
			cfg.DigestMaxDimension, cfg.DigestQuality)
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
