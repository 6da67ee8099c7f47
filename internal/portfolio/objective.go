package portfolio

import "gonum.org/v1/gonum/floats"

// BetaPenaltyScale multiplies the signed cubic beta penalty
const BetaPenaltyScale = 1000.0

// Objective is the minimized function.
//
//	maximize alpha: -(w·α)
//	otherwise:      -(w·α) + 1000·(w·β - target)³
//
// The penalty is a signed cube: it rewards undershooting the target.
type Objective struct {
	Alphas        []float64
	Betas         []float64
	TargetBeta    float64
	MaximizeAlpha bool
}

// Value evaluates the objective
func (o *Objective) Value(w []float64) float64 {
	value := -floats.Dot(w, o.Alphas)
	if o.MaximizeAlpha {
		return value
	}
	gap := floats.Dot(w, o.Betas) - o.TargetBeta
	return value + BetaPenaltyScale*gap*gap*gap
}

// Gradient writes ∇f(w) into grad
func (o *Objective) Gradient(grad, w []float64) {
	floats.ScaleTo(grad, -1, o.Alphas)
	if o.MaximizeAlpha {
		return
	}
	gap := floats.Dot(w, o.Betas) - o.TargetBeta
	floats.AddScaled(grad, 3*BetaPenaltyScale*gap*gap, o.Betas)
}
