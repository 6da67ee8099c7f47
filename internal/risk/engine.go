package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/alphaopt/internal/contracts"
	"github.com/wonny/alphaopt/internal/returns"
)

// =============================================================================
// RiskMetricsCalculator - 순수 계산기
// =============================================================================

// Engine computes per-ticker alpha and beta
// ⭐ SSOT: 데이터 수집은 상위 레이어(brain)에서, 여기서는 순수 계산만
type Engine struct{}

// NewEngine 새 리스크 엔진 생성
func NewEngine() *Engine {
	return &Engine{}
}

// Calculate builds the risk report for every kept ticker, in ticker order
func (e *Engine) Calculate(est *returns.Estimate) (*contracts.RiskReport, error) {
	if est == nil || est.Aligned == nil || est.Prices == nil || est.Benchmark == nil {
		return nil, fmt.Errorf("%w: nothing to measure", contracts.ErrInsufficientData)
	}

	marketPct, err := e.TotalReturnPercent(est.Benchmark.Closes())
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", est.Benchmark.Symbol, err)
	}

	report := &contracts.RiskReport{
		Profiles:            make([]contracts.RiskProfile, 0, len(est.Prices.Tickers)),
		MarketReturnPercent: marketPct,
	}

	for _, ticker := range est.Prices.Tickers {
		stockPct, err := e.TotalReturnPercent(est.Prices.Columns[ticker])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ticker, err)
		}

		beta, err := e.Beta(est.Aligned.Assets[ticker], est.Aligned.Benchmark)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ticker, err)
		}

		report.Profiles = append(report.Profiles, contracts.RiskProfile{
			Ticker:             ticker,
			Alpha:              stockPct - marketPct,
			Beta:               beta,
			StockReturnPercent: stockPct,
		})
	}

	return report, nil
}

// =============================================================================
// Pure Calculations
// =============================================================================

// TotalReturnPercent = (last - first) / first * 100, rounded to 2 decimals.
// Endpoints are the first and last non-missing values.
func (e *Engine) TotalReturnPercent(prices []float64) (float64, error) {
	first, last := math.NaN(), math.NaN()
	for _, p := range prices {
		if math.IsNaN(p) {
			continue
		}
		if math.IsNaN(first) {
			first = p
		}
		last = p
	}

	if math.IsNaN(first) {
		return 0, fmt.Errorf("%w: no prices", contracts.ErrInsufficientData)
	}
	if first == 0 {
		return 0, fmt.Errorf("%w: starting price is zero", contracts.ErrInsufficientData)
	}

	return Round2((last - first) / first * 100), nil
}

// Beta = cov(asset, bench) / var(bench), sample (n-1) estimators
func (e *Engine) Beta(asset, bench []float64) (float64, error) {
	if len(asset) != len(bench) {
		return 0, fmt.Errorf("%w: series length mismatch (%d vs %d)",
			contracts.ErrAlignment, len(asset), len(bench))
	}
	if len(bench) < 2 {
		return 0, fmt.Errorf("%w: got %d, need 2", contracts.ErrInsufficientData, len(bench))
	}

	variance := stat.Variance(bench, nil)
	if variance == 0 || math.IsNaN(variance) {
		return 0, fmt.Errorf("%w: benchmark variance is zero", contracts.ErrInsufficientData)
	}

	return stat.Covariance(asset, bench, nil) / variance, nil
}
