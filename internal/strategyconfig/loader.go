package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/alphaopt/internal/contracts"
	"github.com/wonny/alphaopt/internal/portfolio"
)

// Default returns the built-in profile used when no file is configured
func Default() *Config {
	d := contracts.DefaultRequestDefaults()
	return &Config{
		Meta: Meta{
			StrategyID: "alpha_beta_default",
			Version:    "1",
		},
		Defaults: Defaults{
			TargetBeta:    d.TargetBeta,
			MinWeightPct:  d.MinWeightPct,
			MaxWeightPct:  d.MaxWeightPct,
			MaximizeAlpha: d.MaximizeAlpha,
		},
		Solver: Solver{
			MaxIterations: 1000,
			Tolerance:     1e-6,
		},
	}
}

// Load reads YAML file and returns Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}

	return cfg, data, nil
}

// Parse decodes and validates a profile
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns Default when path is empty
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, _, err := Load(path)
	return cfg, err
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// RequestDefaults converts the profile defaults for request parsing
func (c *Config) RequestDefaults() contracts.Defaults {
	return contracts.Defaults{
		TargetBeta:    c.Defaults.TargetBeta,
		MinWeightPct:  c.Defaults.MinWeightPct,
		MaxWeightPct:  c.Defaults.MaxWeightPct,
		MaximizeAlpha: c.Defaults.MaximizeAlpha,
	}
}

// SolverSettings converts the solver section
func (c *Config) SolverSettings() portfolio.Settings {
	return portfolio.Settings{
		MaxIterations: c.Solver.MaxIterations,
		Tolerance:     c.Solver.Tolerance,
	}
}

// BenchmarkOr returns the profile benchmark, or fallback when unset
func (c *Config) BenchmarkOr(fallback string) string {
	if c.Benchmark.Symbol != "" {
		return c.Benchmark.Symbol
	}
	return fallback
}
