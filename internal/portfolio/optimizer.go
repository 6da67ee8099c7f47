package portfolio

import (
	"context"
	"fmt"

	"github.com/wonny/alphaopt/internal/contracts"
	"github.com/wonny/alphaopt/pkg/logger"
)

// Optimizer builds the objective and constraint set and solves for weights
// ⭐ SSOT: 비중 최적화 로직은 여기서만
type Optimizer struct {
	settings Settings
	logger   *logger.Logger
}

// NewOptimizer creates a new portfolio optimizer
func NewOptimizer(settings Settings, log *logger.Logger) *Optimizer {
	return &Optimizer{
		settings: settings,
		logger:   log,
	}
}

// Input is everything one solve needs
type Input struct {
	Tickers       []string
	Alphas        []float64
	Betas         []float64
	TargetBeta    float64
	MaximizeAlpha bool
	Constraints   Constraints
}

// NewInput assembles optimizer input from the request and risk report
func NewInput(req *contracts.OptimizationRequest, report *contracts.RiskReport) Input {
	return Input{
		Tickers:       report.Tickers(),
		Alphas:        report.Alphas(),
		Betas:         report.Betas(),
		TargetBeta:    req.TargetBeta,
		MaximizeAlpha: req.MaximizeAlpha,
		Constraints:   NewConstraints(req),
	}
}

// Optimize returns fractional weights in ticker order.
// Solver non-convergence yields *contracts.OptimizationFailedError and no weights.
func (o *Optimizer) Optimize(ctx context.Context, in Input) ([]float64, error) {
	n := len(in.Tickers)
	if n == 0 {
		return nil, contracts.ErrEmptyData
	}
	if len(in.Alphas) != n || len(in.Betas) != n {
		return nil, fmt.Errorf("%w: alpha/beta vectors do not match %d tickers", contracts.ErrInvalidRequest, n)
	}
	if err := in.Constraints.Validate(in.Tickers); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objective := &Objective{
		Alphas:        in.Alphas,
		Betas:         in.Betas,
		TargetBeta:    in.TargetBeta,
		MaximizeAlpha: in.MaximizeAlpha,
	}

	problem := Problem{
		Func:        objective.Value,
		Grad:        objective.Gradient,
		Bounds:      in.Constraints.Bounds(in.Tickers),
		Constraints: in.Constraints.Linear(in.Tickers),
	}

	// 초기값: 동일 비중
	x0 := make([]float64, n)
	for i := range x0 {
		x0[i] = 1 / float64(n)
	}

	result, err := Minimize(problem, x0, o.settings)
	if err != nil {
		return nil, fmt.Errorf("build problem: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"tickers":    n,
		"status":     result.Status.String(),
		"iterations": result.Iterations,
		"objective":  result.F,
		"success":    result.Success,
	}).Debug("Solver finished")

	if !result.Success {
		return nil, &contracts.OptimizationFailedError{Message: result.Message}
	}

	return result.X, nil
}
