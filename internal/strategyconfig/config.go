package strategyconfig

// Config는 최적화 프로파일의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Benchmark Benchmark `yaml:"benchmark" json:"benchmark"`
	Defaults  Defaults  `yaml:"defaults" json:"defaults"`
	Solver    Solver    `yaml:"solver" json:"solver"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Benchmark 비교 지수
type Benchmark struct {
	Symbol string `yaml:"symbol" json:"symbol"` // empty → BENCHMARK_SYMBOL
}

// Defaults 요청에서 생략된 필드의 기본값 (비중은 %)
type Defaults struct {
	TargetBeta    float64 `yaml:"target_beta" json:"target_beta"`
	MinWeightPct  float64 `yaml:"min_weight_pct" json:"min_weight_pct"`
	MaxWeightPct  float64 `yaml:"max_weight_pct" json:"max_weight_pct"`
	MaximizeAlpha bool    `yaml:"maximize_alpha" json:"maximize_alpha"`
}

// Solver 종료 조건
type Solver struct {
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance" json:"tolerance"`
}
