package contracts

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the request/response date format
const DateLayout = "2006-01-02"

// OptimizationRequest is the normalized input of one optimization run
// ⭐ SSOT: 요청 → 파이프라인 입력 (비중은 0.0 ~ 1.0)
type OptimizationRequest struct {
	Tickers       []string           `json:"tickers"`
	StartDate     time.Time          `json:"start_date"` // zero = from the earliest available date
	EndDate       time.Time          `json:"end_date"`   // exclusive
	TargetBeta    float64            `json:"target_beta"`
	MinWeight     float64            `json:"min_weight"`    // 0.0 ~ 1.0
	MaxWeight     float64            `json:"max_weight"`    // 0.0 ~ 1.0
	MaximizeAlpha bool               `json:"maximize_alpha"`
	FixedWeights  map[string]float64 `json:"fixed_weights"` // ticker → percent (0 ~ 100)
}

// Validate checks the request invariants
func (r *OptimizationRequest) Validate() error {
	if len(r.Tickers) == 0 {
		return ErrMissingTickers
	}
	if r.MinWeight < 0 || r.MinWeight > 1 {
		return fmt.Errorf("%w: min_weight must be within [0, 100] percent", ErrInvalidRequest)
	}
	if r.MaxWeight < 0 || r.MaxWeight > 1 {
		return fmt.Errorf("%w: max_weight must be within [0, 100] percent", ErrInvalidRequest)
	}
	if r.MinWeight > r.MaxWeight {
		return fmt.Errorf("%w: min_weight must not exceed max_weight", ErrInvalidRequest)
	}
	if !r.StartDate.IsZero() && !r.EndDate.After(r.StartDate) {
		return fmt.Errorf("%w: end_date must be after start_date", ErrInvalidRequest)
	}
	for ticker, pct := range r.FixedWeights {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: fixed weight for %s must be within [0, 100]", ErrInvalidRequest, ticker)
		}
	}
	return nil
}

// Defaults fill the optional request fields
type Defaults struct {
	TargetBeta    float64
	MinWeightPct  float64
	MaxWeightPct  float64
	MaximizeAlpha bool
}

// DefaultRequestDefaults returns the documented API defaults
func DefaultRequestDefaults() Defaults {
	return Defaults{
		TargetBeta:    1,
		MinWeightPct:  5,
		MaxWeightPct:  30,
		MaximizeAlpha: true,
	}
}

// OptimizeInput is the JSON payload accepted by the API and the CLI.
// Weights are percentages.
type OptimizeInput struct {
	Tickers       []string           `json:"tickers" validate:"required,min=1,dive,required"`
	StartDate     string             `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string             `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	TargetBeta    *float64           `json:"target_beta"`
	MinWeight     *float64           `json:"min_weight" validate:"omitempty,gte=0,lte=100"`
	MaxWeight     *float64           `json:"max_weight" validate:"omitempty,gte=0,lte=100"`
	MaximizeAlpha *bool              `json:"maximize_alpha"`
	FixedWeights  map[string]float64 `json:"fixed_weights" validate:"omitempty,dive,keys,required,endkeys,gte=0,lte=100"`
}

var validate = validator.New()

// ToRequest validates the payload and applies defaults.
// now is used when end_date is omitted.
func (in *OptimizeInput) ToRequest(defaults Defaults, now time.Time) (*OptimizationRequest, error) {
	tickers := normalizeTickers(in.Tickers)
	if len(tickers) == 0 {
		return nil, ErrMissingTickers
	}

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, describeValidation(err))
	}

	req := &OptimizationRequest{
		Tickers:       tickers,
		TargetBeta:    defaults.TargetBeta,
		MinWeight:     defaults.MinWeightPct / 100,
		MaxWeight:     defaults.MaxWeightPct / 100,
		MaximizeAlpha: defaults.MaximizeAlpha,
		FixedWeights:  make(map[string]float64, len(in.FixedWeights)),
	}

	if in.TargetBeta != nil {
		req.TargetBeta = *in.TargetBeta
	}
	if in.MinWeight != nil {
		req.MinWeight = *in.MinWeight / 100
	}
	if in.MaxWeight != nil {
		req.MaxWeight = *in.MaxWeight / 100
	}
	if in.MaximizeAlpha != nil {
		req.MaximizeAlpha = *in.MaximizeAlpha
	}
	for ticker, pct := range in.FixedWeights {
		req.FixedWeights[strings.TrimSpace(ticker)] = pct
	}

	if in.StartDate != "" {
		start, err := time.Parse(DateLayout, in.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: start_date: %v", ErrInvalidRequest, err)
		}
		req.StartDate = start
	}

	if in.EndDate != "" {
		end, err := time.Parse(DateLayout, in.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date: %v", ErrInvalidRequest, err)
		}
		req.EndDate = end
	} else {
		y, m, d := now.Date()
		req.EndDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// normalizeTickers trims symbols and drops blanks and repeats, keeping first occurrence order
func normalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// RiskProfile is the per-ticker alpha/beta estimate
type RiskProfile struct {
	Ticker             string  `json:"ticker"`
	Alpha              float64 `json:"alpha"`                // percentage points vs benchmark
	Beta               float64 `json:"beta"`                 // cov(asset, bench) / var(bench)
	StockReturnPercent float64 `json:"stock_return_percent"` // rounded to 2 decimals
}

// RiskReport holds the profiles in ticker order plus the benchmark return
type RiskReport struct {
	Profiles            []RiskProfile `json:"profiles"`
	MarketReturnPercent float64       `json:"market_return_percent"`
}

// Tickers returns the profile tickers in order
func (r *RiskReport) Tickers() []string {
	out := make([]string, len(r.Profiles))
	for i, p := range r.Profiles {
		out[i] = p.Ticker
	}
	return out
}

// Alphas returns the alpha vector in ticker order
func (r *RiskReport) Alphas() []float64 {
	out := make([]float64, len(r.Profiles))
	for i, p := range r.Profiles {
		out[i] = p.Alpha
	}
	return out
}

// Betas returns the beta vector in ticker order
func (r *RiskReport) Betas() []float64 {
	out := make([]float64, len(r.Profiles))
	for i, p := range r.Profiles {
		out[i] = p.Beta
	}
	return out
}

// StockDetail is one entry of sorted_by_industry
type StockDetail struct {
	Ticker             string  `json:"ticker"`
	Weight             float64 `json:"weight"` // percent
	Alpha              float64 `json:"alpha"`
	Beta               float64 `json:"beta"`
	StockReturnPercent float64 `json:"stock_return_percent"`
}

// OptimizationResult is the response payload of a successful run
// ⭐ SSOT: 응답 필드명은 여기서만 정의
type OptimizationResult struct {
	Tickers                []string                 `json:"tickers"`
	WeightsPercent         []float64                `json:"weights_percent"`
	AlphaPercent           []float64                `json:"alpha_percent"`
	Beta                   []float64                `json:"beta"`
	PortfolioAlphaPercent  float64                  `json:"portfolio_alpha_percent"`
	PortfolioBeta          float64                  `json:"portfolio_beta"`
	TargetBeta             float64                  `json:"target_beta"`
	MarketReturnPercent    float64                  `json:"market_return_percent"`
	PortfolioReturnPercent float64                  `json:"portfolio_return_percent"`
	IndustryWeightsPercent map[string]float64       `json:"industry_weights_percent"`
	SortedByIndustry       map[string][]StockDetail `json:"sorted_by_industry"`
	ExcludedTickers        []string                 `json:"excluded_tickers"`
}

// WeightOf returns the percent weight of a ticker
func (r *OptimizationResult) WeightOf(ticker string) (float64, bool) {
	for i, t := range r.Tickers {
		if t == ticker {
			return r.WeightsPercent[i], true
		}
	}
	return 0, false
}
