// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Fraud detection
	FraudScanInterval time.Duration // how often the batch scan runs
	FraudScanTimeout  time.Duration // per-run deadline
	MismatchWindow    time.Duration // location-mismatch lookback
	RapidWindow       time.Duration // rapid-location-change lookback
	SignupWindow      time.Duration // signup-volume lookback

	// Thresholds
	RapidCountryThreshold int     // distinct claimed countries in RapidWindow
	SignupVolumeThreshold int     // signups per country in SignupWindow
	LowTrustConfidence    float64 // confidence below this is suspect
	LowTrustVerifications int     // with at least this many verifications

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint; tracing disabled if empty

	// Geo detection
	GeoCountryHeader string // header carrying the edge-detected country
}

const (
	DefaultPort              = "8080"
	DefaultEnv               = "development"
	DefaultLogLevel          = "info"
	DefaultFraudScanInterval = 1 * time.Hour
	DefaultFraudScanTimeout  = 2 * time.Minute
	DefaultGeoCountryHeader  = "CF-IPCountry"
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", DefaultPort),
		Env:                   getEnv("ENV", DefaultEnv),
		LogLevel:              getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:           os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		FraudScanInterval:     getEnvDuration("FRAUD_SCAN_INTERVAL", DefaultFraudScanInterval),
		FraudScanTimeout:      getEnvDuration("FRAUD_SCAN_TIMEOUT", DefaultFraudScanTimeout),
		MismatchWindow:        getEnvDuration("FRAUD_MISMATCH_WINDOW", 24*time.Hour),
		RapidWindow:           getEnvDuration("FRAUD_RAPID_WINDOW", 1*time.Hour),
		SignupWindow:          getEnvDuration("FRAUD_SIGNUP_WINDOW", 24*time.Hour),
		RapidCountryThreshold: getEnvInt("FRAUD_RAPID_COUNTRIES", 3),
		SignupVolumeThreshold: getEnvInt("FRAUD_SIGNUP_VOLUME", 10),
		LowTrustConfidence:    getEnvFloat("FRAUD_LOW_TRUST_CONFIDENCE", 0.3),
		LowTrustVerifications: getEnvInt("FRAUD_LOW_TRUST_VERIFICATIONS", 5),
		OTLPEndpoint:          os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		GeoCountryHeader:      getEnv("GEO_COUNTRY_HEADER", DefaultGeoCountryHeader),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all configuration values are usable
func (c *Config) Validate() error {
	if c.FraudScanInterval <= 0 {
		return fmt.Errorf("FRAUD_SCAN_INTERVAL must be positive")
	}
	if c.FraudScanTimeout <= 0 {
		return fmt.Errorf("FRAUD_SCAN_TIMEOUT must be positive")
	}
	if c.RapidCountryThreshold < 2 {
		return fmt.Errorf("FRAUD_RAPID_COUNTRIES must be at least 2")
	}
	if c.SignupVolumeThreshold < 1 {
		return fmt.Errorf("FRAUD_SIGNUP_VOLUME must be at least 1")
	}
	if c.LowTrustConfidence < 0 || c.LowTrustConfidence > 1 {
		return fmt.Errorf("FRAUD_LOW_TRUST_CONFIDENCE must be in [0,1]")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
