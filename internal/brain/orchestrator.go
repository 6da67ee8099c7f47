package brain

import (
	"context"
	"time"

	"github.com/wonny/alphaopt/internal/audit"
	"github.com/wonny/alphaopt/internal/contracts"
	"github.com/wonny/alphaopt/internal/portfolio"
	"github.com/wonny/alphaopt/internal/returns"
	"github.com/wonny/alphaopt/internal/risk"
	"github.com/wonny/alphaopt/pkg/logger"
)

// Orchestrator coordinates one optimization run
// prices → returns → alpha/beta → solve → aggregation
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	prices     contracts.PriceSeriesAdapter
	estimator  *returns.Estimator
	riskEngine *risk.Engine
	optimizer  *portfolio.Optimizer
	aggregator *audit.Aggregator

	benchmark   string
	profileHash string

	logger *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID   string
	Request *contracts.OptimizationRequest
}

// RunResult holds the results of a pipeline run
type RunResult struct {
	RunID           string
	Success         bool
	Error           error
	CompletedStages []string
	Result          *contracts.OptimizationResult
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	prices contracts.PriceSeriesAdapter,
	estimator *returns.Estimator,
	riskEngine *risk.Engine,
	optimizer *portfolio.Optimizer,
	aggregator *audit.Aggregator,
	benchmark string,
	profileHash string,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		prices:      prices,
		estimator:   estimator,
		riskEngine:  riskEngine,
		optimizer:   optimizer,
		aggregator:  aggregator,
		benchmark:   benchmark,
		profileHash: profileHash,
		logger:      logger,
	}
}

// Optimize runs the pipeline and returns only the payload
func (o *Orchestrator) Optimize(ctx context.Context, runID string, req *contracts.OptimizationRequest) (*contracts.OptimizationResult, error) {
	result, err := o.Run(ctx, RunConfig{RunID: runID, Request: req})
	if err != nil {
		return nil, err
	}
	return result.Result, nil
}

// Run executes the complete pipeline.
// Errors surface unchanged so callers can match the sentinel errors.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	req := config.Request

	result := &RunResult{
		RunID:           config.RunID,
		CompletedStages: make([]string, 0, 5),
	}
	fail := func(stage string, err error) (*RunResult, error) {
		result.Error = err
		result.Duration = time.Since(startTime)
		o.logger.WithFields(map[string]interface{}{
			"run_id":   config.RunID,
			"stage":    stage,
			"duration": result.Duration.Seconds(),
		}).WithError(err).Warn("Pipeline run failed")
		return result, err
	}

	if req == nil {
		return fail("request", contracts.ErrMissingTickers)
	}
	if err := req.Validate(); err != nil {
		return fail("request", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":         config.RunID,
		"tickers":        req.Tickers,
		"start_date":     formatDate(req.StartDate),
		"end_date":       formatDate(req.EndDate),
		"target_beta":    req.TargetBeta,
		"min_weight":     req.MinWeight,
		"max_weight":     req.MaxWeight,
		"maximize_alpha": req.MaximizeAlpha,
		"fixed_weights":  req.FixedWeights,
		"benchmark":      o.benchmark,
		"profile_hash":   o.profileHash,
	}).Info("Starting optimization run")

	// 1. Prices
	table, err := o.prices.Fetch(ctx, req.Tickers, req.StartDate, req.EndDate)
	if err != nil {
		return fail("prices", err)
	}
	o.logPriceTable(config.RunID, table)

	kept, excluded, err := o.estimator.Exclude(table)
	if err != nil {
		return fail("prices", err)
	}
	result.CompletedStages = append(result.CompletedStages, "Prices")

	// 2. Returns
	bench, err := o.prices.FetchBenchmark(ctx, o.benchmark, req.StartDate, req.EndDate)
	if err != nil {
		return fail("benchmark", err)
	}

	est, err := o.estimator.Estimate(kept, bench)
	if err != nil {
		return fail("returns", err)
	}
	est.Excluded = excluded
	result.CompletedStages = append(result.CompletedStages, "Returns")

	// 3. Alpha / Beta
	report, err := o.riskEngine.Calculate(est)
	if err != nil {
		return fail("risk", err)
	}
	result.CompletedStages = append(result.CompletedStages, "Risk")

	// 4. Solve
	weights, err := o.optimizer.Optimize(ctx, portfolio.NewInput(req, report))
	if err != nil {
		return fail("optimize", err)
	}
	result.CompletedStages = append(result.CompletedStages, "Optimize")

	// 5. Aggregate
	if err := ctx.Err(); err != nil {
		return fail("aggregate", err)
	}
	payload, err := o.aggregator.Aggregate(ctx, req, report, weights, excluded)
	if err != nil {
		return fail("aggregate", err)
	}
	result.CompletedStages = append(result.CompletedStages, "Aggregate")

	result.Result = payload
	result.Success = true
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":           config.RunID,
		"duration":         result.Duration.Seconds(),
		"stages":           len(result.CompletedStages),
		"tickers":          len(payload.Tickers),
		"excluded_tickers": payload.ExcludedTickers,
	}).Info("Optimization run completed successfully")

	return result, nil
}

// logPriceTable logs the table shape at debug level
func (o *Orchestrator) logPriceTable(runID string, table *contracts.PriceTable) {
	fields := map[string]interface{}{
		"run_id":  runID,
		"rows":    table.Rows(),
		"columns": len(table.Tickers),
		"tickers": table.Tickers,
	}
	if table.Rows() > 0 {
		fields["first_date"] = formatDate(table.Dates[0])
		fields["last_date"] = formatDate(table.Dates[table.Rows()-1])
	}

	missing := make([]string, 0)
	for _, ticker := range table.Tickers {
		if table.HasMissing(ticker) {
			missing = append(missing, ticker)
		}
	}
	fields["with_missing"] = missing

	o.logger.WithFields(fields).Debug("Price table loaded")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(contracts.DateLayout)
}
