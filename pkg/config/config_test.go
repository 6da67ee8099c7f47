package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8080" {
		t.Errorf("Expected Port to be 8080, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.BenchmarkSymbol != "^NSEI" {
		t.Errorf("Expected BenchmarkSymbol to be ^NSEI, got %s", cfg.BenchmarkSymbol)
	}

	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("Expected RequestTimeout to be 60s, got %v", cfg.RequestTimeout)
	}

	if cfg.Yahoo.MaxRetries != 0 {
		t.Errorf("Expected no HTTP retries by default, got %d", cfg.Yahoo.MaxRetries)
	}

	if cfg.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("BENCHMARK_SYMBOL", "^GSPC")
	t.Setenv("YAHOO_MAX_CONCURRENCY", "8")
	t.Setenv("YAHOO_RATE_PER_SEC", "2.5")
	t.Setenv("STRICT_HTTP_STATUS", "true")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.BenchmarkSymbol != "^GSPC" {
		t.Errorf("Expected BenchmarkSymbol to be ^GSPC, got %s", cfg.BenchmarkSymbol)
	}

	if cfg.Yahoo.MaxConcurrency != 8 {
		t.Errorf("Expected MaxConcurrency to be 8, got %d", cfg.Yahoo.MaxConcurrency)
	}

	if cfg.Yahoo.RatePerSec != 2.5 {
		t.Errorf("Expected RatePerSec to be 2.5, got %v", cfg.Yahoo.RatePerSec)
	}

	if !cfg.StrictHTTPStatus {
		t.Error("Expected StrictHTTPStatus to be true")
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateNegativeRetries(t *testing.T) {
	t.Setenv("HTTP_MAX_RETRIES", "-1")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when HTTP_MAX_RETRIES is negative, got nil")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsDurationInvalidFallsBack(t *testing.T) {
	os.Setenv("TEST_DURATION", "soon")
	defer os.Unsetenv("TEST_DURATION")

	if got := getEnvAsDuration("TEST_DURATION", "1h"); got != time.Hour {
		t.Errorf("Expected fallback to 1h, got %v", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "abc")
	defer os.Unsetenv("TEST_FLOAT")

	if value := getEnvAsFloat("TEST_FLOAT", 1.5); value != 1.5 {
		t.Errorf("Expected fallback 1.5, got %v", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
