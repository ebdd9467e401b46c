package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadValidConfig(t *testing.T) {
	cleanupEnv()
	_ = os.Setenv("PORT", "8002")
	_ = os.Setenv("ADDRESS", "127.0.0.1")
	_ = os.Setenv("ENV", "dev")
	_ = os.Setenv("LOG_LEVEL", "info")
	_ = os.Setenv("OPENFDA_API_KEY", "secret")
	_ = os.Setenv("LOOKUP_TIMEOUT", "15s")
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.OpenFDAAPIKey != "secret" {
		t.Errorf("Expected api key to be read, got %q", cfg.OpenFDAAPIKey)
	}
	if cfg.LookupTimeout != 15*time.Second {
		t.Errorf("Expected lookup timeout 15s, got %s", cfg.LookupTimeout)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.OpenFDABaseURL != "https://api.fda.gov/drug" {
		t.Errorf("Expected default openFDA base URL, got %s", cfg.OpenFDABaseURL)
	}
	if cfg.HistoryCapacity != 20 {
		t.Errorf("Expected default history capacity 20, got %d", cfg.HistoryCapacity)
	}
	if cfg.SearchDebounce != 300*time.Millisecond {
		t.Errorf("Expected default debounce 300ms, got %s", cfg.SearchDebounce)
	}
	if cfg.LookupTimeout != 12*time.Second {
		t.Errorf("Expected default lookup timeout 12s, got %s", cfg.LookupTimeout)
	}
}

func TestInvalidValues(t *testing.T) {
	testCases := []struct {
		key      string
		value    string
		expected string
	}{
		{"PORT", "abc", "PORT must be a valid number"},
		{"PORT", "0", "PORT must be between 1 and 65535"},
		{"PORT", "80", "PORT 80 is privileged"},
		{"ADDRESS", "8.8.8.8", "is a public IP"},
		{"ENV", "production", "ENV must be one of"},
		{"LOG_LEVEL", "verbose", "LOG_LEVEL must be one of"},
		{"OPENFDA_BASE_URL", "ftp://api.fda.gov", "scheme must be http or https"},
		{"LOOKUP_TIMEOUT", "500ms", "invalid LOOKUP_TIMEOUT"},
		{"LOOKUP_RATE", "-1", "invalid LOOKUP_RATE"},
		{"HISTORY_CAPACITY", "0", "HISTORY_CAPACITY must be between 1 and 500"},
		{"SEARCH_DEBOUNCE", "10s", "invalid SEARCH_DEBOUNCE"},
		{"PROBE_INTERVAL_MINUTES", "0", "PROBE_INTERVAL_MINUTES must be between"},
		{"MAX_REQUEST_BODY", "-5", "MAX_REQUEST_BODY must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			cleanupEnv()
			defer cleanupEnv()
			_ = os.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %q", tc.expected, err.Error())
			}
		})
	}
}

func TestUnparsableValuesUseDefaults(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()
	_ = os.Setenv("LOOKUP_TIMEOUT", "soon")
	_ = os.Setenv("HISTORY_CAPACITY", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.LookupTimeout != 12*time.Second {
		t.Errorf("Expected default timeout, got %s", cfg.LookupTimeout)
	}
	if cfg.HistoryCapacity != 20 {
		t.Errorf("Expected default capacity, got %d", cfg.HistoryCapacity)
	}
}

func TestGetEnvVars(t *testing.T) {
	vars := GetEnvVars()
	for _, v := range []string{"PORT", "OPENFDA_BASE_URL", "HISTORY_FILE", "SEARCH_DEBOUNCE"} {
		found := false
		for _, got := range vars {
			if got == v {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected %s in GetEnvVars()", v)
		}
	}
}

func cleanupEnv() {
	for _, v := range GetEnvVars() {
		_ = os.Unsetenv(v)
	}
}
