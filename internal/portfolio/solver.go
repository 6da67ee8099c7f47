package portfolio

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// =============================================================================
// Gradient-projection solver
// =============================================================================
//
// Minimize handles a smooth objective under box bounds plus linear
// constraints of the portfolio family: any number of single-variable
// constraints and at most one equal-coefficient equality (the budget).
// The feasible set is a capped simplex, projected onto exactly, so every
// iterate stays feasible.

// Solver messages
const (
	MsgSuccess        = "Optimization terminated successfully"
	MsgIterationLimit = "Iteration limit reached"
	MsgIncompatible   = "Inequality constraints incompatible"
	MsgLineSearch     = "Positive directional derivative for linesearch"
)

// ErrUnsupportedConstraint is returned for constraints outside the supported family
var ErrUnsupportedConstraint = errors.New("unsupported constraint")

// ConstraintType distinguishes equality from inequality constraints
type ConstraintType int

const (
	// Eq means Coef·x + Const = 0
	Eq ConstraintType = iota
	// Ineq means Coef·x + Const >= 0
	Ineq
)

// Constraint is a linear constraint on x
type Constraint struct {
	Type  ConstraintType
	Coef  []float64
	Const float64
}

// Bound is a closed interval for one variable
type Bound struct {
	Lower float64
	Upper float64
}

// Problem is a minimization problem
type Problem struct {
	Func        func(x []float64) float64
	Grad        func(grad, x []float64)
	Bounds      []Bound
	Constraints []Constraint
}

// Settings controls termination
type Settings struct {
	MaxIterations int     // default 1000
	Tolerance     float64 // default 1e-6
}

// SolverResult is the outcome of Minimize
type SolverResult struct {
	X          []float64
	F          float64
	Status     optimize.Status
	Success    bool
	Message    string
	Iterations int
}

const (
	eps         = 1e-12
	armijo      = 1e-4
	maxBackoffs = 40
	minStep     = 1e-10
	maxStep     = 1e10
)

// Minimize solves the problem from x0.
// An error is returned only for malformed problems; non-convergence is
// reported through SolverResult.Success and Message.
func Minimize(p Problem, x0 []float64, settings Settings) (*SolverResult, error) {
	n := len(x0)
	if n == 0 {
		return nil, fmt.Errorf("empty initial guess")
	}
	if p.Func == nil || p.Grad == nil {
		return nil, fmt.Errorf("objective and gradient are required")
	}
	if len(p.Bounds) != 0 && len(p.Bounds) != n {
		return nil, fmt.Errorf("bounds length %d does not match %d variables", len(p.Bounds), n)
	}
	if settings.MaxIterations <= 0 {
		settings.MaxIterations = 1000
	}
	if settings.Tolerance <= 0 {
		settings.Tolerance = 1e-6
	}

	set, err := newFeasibleSet(n, p.Bounds, p.Constraints)
	if err != nil {
		return nil, err
	}
	if !set.feasible() {
		return &SolverResult{
			X:       append([]float64(nil), x0...),
			F:       p.Func(x0),
			Status:  optimize.Failure,
			Message: MsgIncompatible,
		}, nil
	}

	x := make([]float64, n)
	set.project(x, x0)
	f := p.Func(x)
	g := make([]float64, n)
	p.Grad(g, x)

	var (
		y    = make([]float64, n)
		proj = make([]float64, n)
		d    = make([]float64, n)
		xn   = make([]float64, n)
		gn   = make([]float64, n)
		sk   = make([]float64, n)
		yk   = make([]float64, n)
	)

	step := 1 / math.Max(floats.Norm(g, math.Inf(1)), eps)

	result := &SolverResult{}
	finish := func(status optimize.Status, msg string, iter int) (*SolverResult, error) {
		final := make([]float64, n)
		set.project(final, x)
		result.X = final
		result.F = p.Func(final)
		result.Status = status
		result.Success = status == optimize.GradientThreshold || status == optimize.FunctionConvergence
		result.Message = msg
		result.Iterations = iter
		return result, nil
	}

	for iter := 1; iter <= settings.MaxIterations; iter++ {
		// 정지 조건: 단위 스텝 사영 기울기
		floats.SubTo(y, x, g)
		set.project(proj, y)
		floats.SubTo(d, proj, x)
		if floats.Norm(d, math.Inf(1)) <= settings.Tolerance {
			return finish(optimize.GradientThreshold, MsgSuccess, iter)
		}

		// 탐색 방향: BB 스텝 사영
		floats.AddScaledTo(y, x, -step, g)
		set.project(proj, y)
		floats.SubTo(d, proj, x)

		dg := floats.Dot(d, g)
		if dg >= 0 {
			if floats.Norm(d, math.Inf(1)) <= settings.Tolerance {
				return finish(optimize.GradientThreshold, MsgSuccess, iter)
			}
			return finish(optimize.Failure, MsgLineSearch, iter)
		}

		t := 1.0
		var fn float64
		accepted := false
		for k := 0; k < maxBackoffs; k++ {
			floats.AddScaledTo(xn, x, t, d)
			fn = p.Func(xn)
			if optimize.ArmijoConditionMet(fn, f, dg, t, armijo) {
				accepted = true
				break
			}
			t *= 0.5
		}
		if !accepted {
			return finish(optimize.Failure, MsgLineSearch, iter)
		}

		p.Grad(gn, xn)
		floats.SubTo(sk, xn, x)
		floats.SubTo(yk, gn, g)

		moved := floats.Norm(sk, math.Inf(1))
		decrease := f - fn

		copy(x, xn)
		copy(g, gn)
		f = fn

		if moved <= eps || (decrease <= eps*(1+math.Abs(f)) && moved <= settings.Tolerance) {
			return finish(optimize.FunctionConvergence, MsgSuccess, iter)
		}

		// Barzilai-Borwein
		if sy := floats.Dot(sk, yk); sy > 0 {
			step = floats.Dot(sk, sk) / sy
		} else {
			step *= 2
		}
		step = math.Min(math.Max(step, minStep), maxStep)
	}

	return finish(optimize.IterationLimit, MsgIterationLimit, settings.MaxIterations)
}

// =============================================================================
// Feasible set: boxes + pinned values + one budget
// =============================================================================

type feasibleSet struct {
	n        int
	lower    []float64
	upper    []float64
	pinned   []bool
	value    []float64 // pinned value
	inBudget []bool
	budget   float64 // remaining budget after pinned members
	hasBudget bool
	conflict bool
}

func newFeasibleSet(n int, bounds []Bound, constraints []Constraint) (*feasibleSet, error) {
	s := &feasibleSet{
		n:        n,
		lower:    make([]float64, n),
		upper:    make([]float64, n),
		pinned:   make([]bool, n),
		value:    make([]float64, n),
		inBudget: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		s.lower[i], s.upper[i] = math.Inf(-1), math.Inf(1)
		if len(bounds) == n {
			s.lower[i], s.upper[i] = bounds[i].Lower, bounds[i].Upper
		}
	}

	for ci, c := range constraints {
		if len(c.Coef) != n {
			return nil, fmt.Errorf("%w: constraint %d has %d coefficients, want %d",
				ErrUnsupportedConstraint, ci, len(c.Coef), n)
		}

		nz := make([]int, 0, n)
		for i, a := range c.Coef {
			if a != 0 {
				nz = append(nz, i)
			}
		}

		switch {
		case len(nz) == 0:
			if (c.Type == Eq && math.Abs(c.Const) > eps) || (c.Type == Ineq && c.Const < -eps) {
				s.conflict = true
			}

		case len(nz) == 1:
			i := nz[0]
			v := -c.Const / c.Coef[i]
			if c.Type == Eq {
				if s.pinned[i] && math.Abs(s.value[i]-v) > eps {
					s.conflict = true
				}
				s.pinned[i], s.value[i] = true, v
			} else if c.Coef[i] > 0 {
				s.lower[i] = math.Max(s.lower[i], v)
			} else {
				s.upper[i] = math.Min(s.upper[i], v)
			}

		case c.Type == Eq && !s.hasBudget && sameCoef(c.Coef, nz):
			a := c.Coef[nz[0]]
			for _, i := range nz {
				s.inBudget[i] = true
			}
			s.budget = -c.Const / a
			s.hasBudget = true

		default:
			return nil, fmt.Errorf("%w: constraint %d", ErrUnsupportedConstraint, ci)
		}
	}

	for i := 0; i < n; i++ {
		if s.pinned[i] && s.inBudget[i] {
			s.budget -= s.value[i]
		}
	}

	return s, nil
}

func sameCoef(coef []float64, nz []int) bool {
	for _, i := range nz[1:] {
		if coef[i] != coef[nz[0]] {
			return false
		}
	}
	return true
}

func (s *feasibleSet) feasible() bool {
	if s.conflict {
		return false
	}

	var lo, hi float64
	free := 0
	for i := 0; i < s.n; i++ {
		if s.pinned[i] {
			continue
		}
		if s.lower[i] > s.upper[i]+eps {
			return false
		}
		if s.inBudget[i] {
			lo += s.lower[i]
			hi += s.upper[i]
			free++
		}
	}

	if !s.hasBudget {
		return true
	}
	if free == 0 {
		return math.Abs(s.budget) <= 1e-9
	}
	return lo <= s.budget+1e-9 && s.budget <= hi+1e-9
}

// project writes the Euclidean projection of y onto the set into dst
func (s *feasibleSet) project(dst, y []float64) {
	for i := 0; i < s.n; i++ {
		switch {
		case s.pinned[i]:
			dst[i] = s.value[i]
		case !s.inBudget[i]:
			dst[i] = clip(y[i], s.lower[i], s.upper[i])
		}
	}
	if !s.hasBudget {
		return
	}

	// Σ clip(y_i - τ) = budget 인 τ를 이분 탐색
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < s.n; i++ {
		if s.pinned[i] || !s.inBudget[i] {
			continue
		}
		lo = math.Min(lo, y[i]-s.upper[i])
		hi = math.Max(hi, y[i]-s.lower[i])
	}
	if math.IsInf(lo, 1) {
		return
	}

	total := func(tau float64) float64 {
		var sum float64
		for i := 0; i < s.n; i++ {
			if s.pinned[i] || !s.inBudget[i] {
				continue
			}
			sum += clip(y[i]-tau, s.lower[i], s.upper[i])
		}
		return sum
	}

	for k := 0; k < 200 && hi-lo > 1e-15*(1+math.Abs(lo)+math.Abs(hi)); k++ {
		mid := lo + (hi-lo)/2
		if total(mid) > s.budget {
			lo = mid
		} else {
			hi = mid
		}
	}
	tau := lo + (hi-lo)/2

	// 자유 변수로 τ 보정 (합계 오차 제거)
	var sumFree, sumClipped float64
	free := 0
	for i := 0; i < s.n; i++ {
		if s.pinned[i] || !s.inBudget[i] {
			continue
		}
		v := y[i] - tau
		if v > s.lower[i] && v < s.upper[i] {
			sumFree += y[i]
			free++
		} else {
			sumClipped += clip(v, s.lower[i], s.upper[i])
		}
	}
	if free > 0 {
		polished := (sumFree + sumClipped - s.budget) / float64(free)
		ok := true
		for i := 0; i < s.n && ok; i++ {
			if s.pinned[i] || !s.inBudget[i] {
				continue
			}
			v := y[i] - tau
			if v > s.lower[i] && v < s.upper[i] {
				pv := y[i] - polished
				ok = pv >= s.lower[i] && pv <= s.upper[i]
			}
		}
		if ok {
			tau = polished
		}
	}

	for i := 0; i < s.n; i++ {
		if s.pinned[i] || !s.inBudget[i] {
			continue
		}
		dst[i] = clip(y[i]-tau, s.lower[i], s.upper[i])
	}
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
