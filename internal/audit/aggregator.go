package audit

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/wonny/alphaopt/internal/contracts"
	"github.com/wonny/alphaopt/internal/risk"
	"github.com/wonny/alphaopt/pkg/logger"
)

// Aggregator packages weights and risk metrics into the response payload
// ⭐ SSOT: 응답 반올림/업종 집계는 여기서만
type Aggregator struct {
	industries  contracts.IndustryLookup
	concurrency int
	logger      *logger.Logger
}

// NewAggregator creates a new result aggregator
func NewAggregator(industries contracts.IndustryLookup, concurrency int, log *logger.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Aggregator{
		industries:  industries,
		concurrency: concurrency,
		logger:      log,
	}
}

// Aggregate builds the result. weights are fractions in report ticker order.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	req *contracts.OptimizationRequest,
	report *contracts.RiskReport,
	weights []float64,
	excluded []string,
) (*contracts.OptimizationResult, error) {
	tickers := report.Tickers()
	if len(weights) != len(tickers) {
		return nil, fmt.Errorf("%d weights for %d tickers", len(weights), len(tickers))
	}

	alphas := report.Alphas()
	betas := report.Betas()

	result := &contracts.OptimizationResult{
		Tickers:                tickers,
		WeightsPercent:         make([]float64, len(tickers)),
		AlphaPercent:           make([]float64, len(tickers)),
		Beta:                   make([]float64, len(tickers)),
		PortfolioBeta:          risk.Round2(floats.Dot(weights, betas)),
		TargetBeta:             risk.Round2(req.TargetBeta),
		MarketReturnPercent:    report.MarketReturnPercent,
		IndustryWeightsPercent: make(map[string]float64),
		SortedByIndustry:       make(map[string][]contracts.StockDetail),
		ExcludedTickers:        append(make([]string, 0, len(excluded)), excluded...),
	}
	result.PortfolioAlphaPercent = risk.Round2(floats.Dot(weights, alphas))
	result.PortfolioReturnPercent = result.PortfolioAlphaPercent + result.MarketReturnPercent

	// 업종 조회는 한 번만 (가중치 합산과 상세 목록이 공유)
	industries := a.LookupIndustries(ctx, tickers)

	rawIndustry := make(map[string]float64)
	for i, ticker := range tickers {
		pct := weights[i] * 100
		industry := industries[ticker]

		result.WeightsPercent[i] = risk.Round2(pct)
		result.AlphaPercent[i] = risk.Round2(alphas[i])
		result.Beta[i] = risk.Round2(betas[i])

		rawIndustry[industry] += pct
		result.SortedByIndustry[industry] = append(result.SortedByIndustry[industry], contracts.StockDetail{
			Ticker:             ticker,
			Weight:             risk.Round2(pct),
			Alpha:              result.AlphaPercent[i],
			Beta:               result.Beta[i],
			StockReturnPercent: report.Profiles[i].StockReturnPercent,
		})
	}

	for industry, pct := range rawIndustry {
		result.IndustryWeightsPercent[industry] = risk.Round2(pct)
	}

	a.logger.WithFields(map[string]interface{}{
		"tickers":         len(tickers),
		"industries":      len(result.IndustryWeightsPercent),
		"portfolio_alpha": result.PortfolioAlphaPercent,
		"portfolio_beta":  result.PortfolioBeta,
	}).Info("Result aggregated")

	return result, nil
}

// LookupIndustries resolves every ticker once, with bounded concurrency
func (a *Aggregator) LookupIndustries(ctx context.Context, tickers []string) map[string]string {
	labels := make([]string, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, ticker := range tickers {
		g.Go(func() error {
			labels[i] = a.industries.Lookup(gctx, ticker)
			return nil
		})
	}
	_ = g.Wait() // Lookup never fails

	out := make(map[string]string, len(tickers))
	for i, ticker := range tickers {
		out[ticker] = labels[i]
	}
	return out
}
