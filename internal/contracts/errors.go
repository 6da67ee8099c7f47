package contracts

import "errors"

// Pipeline errors
// ⭐ SSOT: 파이프라인 에러 분류는 여기서만 정의
var (
	ErrMissingTickers     = errors.New("No stock tickers provided")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrDataFetch          = errors.New("Error fetching data from Yahoo Finance")
	ErrEmptyData          = errors.New("All provided tickers contain NaN values. Please provide valid tickers.")
	ErrAlignment          = errors.New("no overlapping dates between assets and benchmark")
	ErrInsufficientData   = errors.New("insufficient aligned observations")
	ErrOptimizationFailed = errors.New("Optimization failed")
	ErrIndustryLookup     = errors.New("industry lookup failed")
)

// OptimizationFailedError carries the solver diagnostic
type OptimizationFailedError struct {
	Message string
}

func (e *OptimizationFailedError) Error() string {
	return "Optimization failed: " + e.Message
}

// Is makes errors.Is(err, ErrOptimizationFailed) hold
func (e *OptimizationFailedError) Is(target error) bool {
	return target == ErrOptimizationFailed
}
