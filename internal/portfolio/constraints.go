package portfolio

import (
	"fmt"
	"slices"

	"github.com/wonny/alphaopt/internal/contracts"
)

// Constraints defines the allocation constraints of one request
// ⭐ SSOT: 포트폴리오 제약조건은 여기서만
type Constraints struct {
	MinWeight float64            // 종목당 최소 비중 (0.0 ~ 1.0), bounds lower limit
	MaxWeight float64            // 종목당 최대 비중 (0.0 ~ 1.0), inequality constraint
	Fixed     map[string]float64 // 고정 비중 (0.0 ~ 1.0)
}

// NewConstraints converts request fields; fixed weights arrive as percent
func NewConstraints(req *contracts.OptimizationRequest) Constraints {
	fixed := make(map[string]float64, len(req.FixedWeights))
	for ticker, pct := range req.FixedWeights {
		fixed[ticker] = pct / 100
	}
	return Constraints{
		MinWeight: req.MinWeight,
		MaxWeight: req.MaxWeight,
		Fixed:     fixed,
	}
}

// IsFixed checks if a ticker has a pinned weight
func (c *Constraints) IsFixed(ticker string) bool {
	_, ok := c.Fixed[ticker]
	return ok
}

// Validate checks that every fixed ticker is part of the optimized set
func (c *Constraints) Validate(tickers []string) error {
	for ticker := range c.Fixed {
		if !slices.Contains(tickers, ticker) {
			return fmt.Errorf("%w: fixed weight ticker %s is not in the optimized set",
				contracts.ErrInvalidRequest, ticker)
		}
	}
	return nil
}

// Bounds returns [min_weight, 1] per ticker.
// The upper bound stays 1; max_weight is enforced by Inequalities.
// Pinned tickers get [0, 1] so their pinned value governs.
func (c *Constraints) Bounds(tickers []string) []Bound {
	bounds := make([]Bound, len(tickers))
	for i, ticker := range tickers {
		if c.IsFixed(ticker) {
			bounds[i] = Bound{Lower: 0, Upper: 1}
			continue
		}
		bounds[i] = Bound{Lower: c.MinWeight, Upper: 1}
	}
	return bounds
}

// Linear returns Σw = 1, max_weight - w_i >= 0 and w_t = fixed_t
func (c *Constraints) Linear(tickers []string) []Constraint {
	n := len(tickers)
	out := make([]Constraint, 0, 1+2*n)

	budget := make([]float64, n)
	for i := range budget {
		budget[i] = 1
	}
	out = append(out, Constraint{Type: Eq, Coef: budget, Const: -1})

	for i, ticker := range tickers {
		if c.IsFixed(ticker) {
			continue
		}
		coef := make([]float64, n)
		coef[i] = -1
		out = append(out, Constraint{Type: Ineq, Coef: coef, Const: c.MaxWeight})
	}

	for i, ticker := range tickers {
		value, ok := c.Fixed[ticker]
		if !ok {
			continue
		}
		coef := make([]float64, n)
		coef[i] = 1
		out = append(out, Constraint{Type: Eq, Coef: coef, Const: -value})
	}

	return out
}
