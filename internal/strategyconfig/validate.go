package strategyconfig

import (
	"fmt"
	"strings"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Benchmark ===
	if cfg.Benchmark.Symbol != strings.TrimSpace(cfg.Benchmark.Symbol) {
		return ValidationError{"benchmark.symbol", "must not contain surrounding spaces"}
	}

	// === Defaults ===
	d := cfg.Defaults
	if d.MinWeightPct < 0 || d.MinWeightPct > 100 {
		return ValidationError{"defaults.min_weight_pct", "must be in [0, 100]"}
	}
	if d.MaxWeightPct < 0 || d.MaxWeightPct > 100 {
		return ValidationError{"defaults.max_weight_pct", "must be in [0, 100]"}
	}
	if d.MinWeightPct > d.MaxWeightPct {
		return ValidationError{"defaults", "min_weight_pct must be <= max_weight_pct"}
	}

	// === Solver ===
	if cfg.Solver.MaxIterations <= 0 {
		return ValidationError{"solver.max_iterations", "must be > 0"}
	}
	if cfg.Solver.Tolerance <= 0 || cfg.Solver.Tolerance >= 1 {
		return ValidationError{"solver.tolerance", "must be in (0, 1)"}
	}

	return nil
}

// CheckWarnings returns recommended-range violations
func CheckWarnings(cfg *Config) []Warning {
	warnings := make([]Warning, 0)

	if cfg.Defaults.TargetBeta < 0 || cfg.Defaults.TargetBeta > 3 {
		warnings = append(warnings, Warning{
			Code:    "TARGET_BETA_RANGE",
			Message: fmt.Sprintf("target_beta %.2f is outside the usual [0, 3] range", cfg.Defaults.TargetBeta),
		})
	}
	if cfg.Solver.Tolerance > 1e-4 {
		warnings = append(warnings, Warning{
			Code:    "SOLVER_TOLERANCE_LOOSE",
			Message: fmt.Sprintf("tolerance %g may leave weights visibly off the optimum", cfg.Solver.Tolerance),
		})
	}
	if cfg.Solver.MaxIterations < 100 {
		warnings = append(warnings, Warning{
			Code:    "SOLVER_ITERATIONS_LOW",
			Message: fmt.Sprintf("max_iterations %d may end runs with an iteration limit", cfg.Solver.MaxIterations),
		})
	}

	return warnings
}
