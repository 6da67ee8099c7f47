package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Optimizer
	BenchmarkSymbol  string
	ProfilePath      string        // optional YAML optimizer profile
	RequestTimeout   time.Duration // caller-imposed deadline around one optimization
	StrictHTTPStatus bool          // map pipeline errors to non-200 statuses

	// External APIs
	Yahoo YahooConfig

	// Redis (outbound rate limiting only)
	Redis RedisConfig

	// Logging
	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
}

// YahooConfig holds Yahoo Finance endpoint configuration
type YahooConfig struct {
	ChartURL       string
	ProfileURL     string
	UserAgent      string
	Timeout        time.Duration
	MaxConcurrency int
	RatePerSec     float64
	MaxRetries     int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Optimizer
		BenchmarkSymbol:  getEnv("BENCHMARK_SYMBOL", "^NSEI"),
		ProfilePath:      getEnv("OPTIMIZER_PROFILE", ""),
		RequestTimeout:   getEnvAsDuration("REQUEST_TIMEOUT", "60s"),
		StrictHTTPStatus: getEnvAsBool("STRICT_HTTP_STATUS", false),

		Yahoo: YahooConfig{
			ChartURL:       getEnv("YAHOO_CHART_URL", "https://query1.finance.yahoo.com"),
			ProfileURL:     getEnv("YAHOO_PROFILE_URL", "https://finance.yahoo.com"),
			UserAgent:      getEnv("YAHOO_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"),
			Timeout:        getEnvAsDuration("YAHOO_TIMEOUT", "30s"),
			MaxConcurrency: getEnvAsInt("YAHOO_MAX_CONCURRENCY", 4),
			RatePerSec:     getEnvAsFloat("YAHOO_RATE_PER_SEC", 5),
			MaxRetries:     getEnvAsInt("HTTP_MAX_RETRIES", 0),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Logging
		LogLevel:      getEnv("LOG_LEVEL", "debug"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.BenchmarkSymbol == "" {
		return fmt.Errorf("BENCHMARK_SYMBOL must not be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}

	if c.Yahoo.MaxConcurrency <= 0 {
		return fmt.Errorf("YAHOO_MAX_CONCURRENCY must be > 0")
	}

	if c.Yahoo.MaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES must be >= 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
