// Package config has the configuration for the medicine lookup service
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               string
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	OpenFDABaseURL       string
	OpenFDAAPIKey        string
	LookupTimeout        time.Duration
	LookupRate           float64 // Outbound label API calls per second
	HistoryFile          string
	HistoryCapacity      int
	SearchDebounce       time.Duration
	ProbeIntervalMinutes int
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               getEnvWithDefault("ENV", "dev"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default

		OpenFDABaseURL:       getEnvWithDefault("OPENFDA_BASE_URL", "https://api.fda.gov/drug"),
		OpenFDAAPIKey:        os.Getenv("OPENFDA_API_KEY"),
		LookupTimeout:        getDurationEnvWithDefault("LOOKUP_TIMEOUT", 12*time.Second),
		LookupRate:           getFloatEnvWithDefault("LOOKUP_RATE", 4),
		HistoryFile:          getEnvWithDefault("HISTORY_FILE", "data/search_history.json"),
		HistoryCapacity:      getIntEnvWithDefault("HISTORY_CAPACITY", 20),
		SearchDebounce:       getDurationEnvWithDefault("SEARCH_DEBOUNCE", 300*time.Millisecond),
		ProbeIntervalMinutes: getIntEnvWithDefault("PROBE_INTERVAL_MINUTES", 30),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateOneOf(cfg.Env, "ENV", []string{"dev", "staging", "prod", "test"}); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateOneOf(cfg.LogLevel, "LOG_LEVEL", []string{"debug", "info", "warn", "error"}); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateRange(cfg.LogRetentionWeeks, 1, 52, "LOG_RETENTION_WEEKS"); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if cfg.MaxLogFileSize < 1024*1024 || cfg.MaxLogFileSize > 1024*1024*1024 {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: must be between 1MB and 1GB, got: %d bytes", cfg.MaxLogFileSize)
	}

	if err := validateBaseURL(cfg.OpenFDABaseURL); err != nil {
		return fmt.Errorf("invalid OPENFDA_BASE_URL: %w", err)
	}

	if cfg.LookupTimeout < time.Second || cfg.LookupTimeout > time.Minute {
		return fmt.Errorf("invalid LOOKUP_TIMEOUT: must be between 1s and 60s, got: %s", cfg.LookupTimeout)
	}

	if cfg.LookupRate <= 0 || cfg.LookupRate > 240 {
		return fmt.Errorf("invalid LOOKUP_RATE: must be in (0, 240], got: %g", cfg.LookupRate)
	}

	if strings.TrimSpace(cfg.HistoryFile) == "" {
		return fmt.Errorf("invalid HISTORY_FILE: cannot be empty")
	}

	if err := validateRange(cfg.HistoryCapacity, 1, 500, "HISTORY_CAPACITY"); err != nil {
		return fmt.Errorf("invalid HISTORY_CAPACITY: %w", err)
	}

	if cfg.SearchDebounce < 0 || cfg.SearchDebounce > 5*time.Second {
		return fmt.Errorf("invalid SEARCH_DEBOUNCE: must be between 0 and 5s, got: %s", cfg.SearchDebounce)
	}

	if err := validateRange(cfg.ProbeIntervalMinutes, 1, 1440, "PROBE_INTERVAL_MINUTES"); err != nil {
		return fmt.Errorf("invalid PROBE_INTERVAL_MINUTES: %w", err)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

func validateOneOf(value, name string, allowed []string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}

	value = strings.ToLower(value)
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}

	return fmt.Errorf("%s must be one of: %v, got: %s", name, allowed, value)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

func validateRange(v, min, max int, configName string) error {
	if v < min || v > max {
		return fmt.Errorf("%s must be between %d and %d, got: %d", configName, min, max, v)
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getDurationEnvWithDefault accepts Go duration strings ("12s", "300ms")
func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"OPENFDA_BASE_URL",
		"OPENFDA_API_KEY",
		"LOOKUP_TIMEOUT",
		"LOOKUP_RATE",
		"HISTORY_FILE",
		"HISTORY_CAPACITY",
		"SEARCH_DEBOUNCE",
		"PROBE_INTERVAL_MINUTES",
	}
}
