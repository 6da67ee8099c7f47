package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// quadratic returns f(x) = Σ(x_i - c_i)²
func quadratic(c []float64) (func([]float64) float64, func([]float64, []float64)) {
	f := func(x []float64) float64 {
		var sum float64
		for i := range x {
			d := x[i] - c[i]
			sum += d * d
		}
		return sum
	}
	g := func(grad, x []float64) {
		for i := range x {
			grad[i] = 2 * (x[i] - c[i])
		}
	}
	return f, g
}

func budget(n int) Constraint {
	coef := make([]float64, n)
	for i := range coef {
		coef[i] = 1
	}
	return Constraint{Type: Eq, Coef: coef, Const: -1}
}

func TestMinimize_Unconstrained(t *testing.T) {
	f, g := quadratic([]float64{0.3, -0.2})

	res, err := Minimize(Problem{Func: f, Grad: g}, []float64{5, 5}, Settings{})
	require.NoError(t, err)

	assert.True(t, res.Success, res.Message)
	assert.Equal(t, MsgSuccess, res.Message)
	assert.InDelta(t, 0.3, res.X[0], 1e-6)
	assert.InDelta(t, -0.2, res.X[1], 1e-6)
}

func TestMinimize_SimplexProjection(t *testing.T) {
	// 최적점이 단체(simplex) 바깥 → 경계로 사영
	f, g := quadratic([]float64{0.9, 0.9, -0.5})

	res, err := Minimize(Problem{
		Func:        f,
		Grad:        g,
		Bounds:      []Bound{{0, 1}, {0, 1}, {0, 1}},
		Constraints: []Constraint{budget(3)},
	}, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, Settings{})
	require.NoError(t, err)

	require.True(t, res.Success, res.Message)
	assert.InDelta(t, 1.0, floats.Sum(res.X), 1e-9)
	assert.InDelta(t, 0.5, res.X[0], 1e-6)
	assert.InDelta(t, 0.5, res.X[1], 1e-6)
	assert.InDelta(t, 0.0, res.X[2], 1e-9)
}

func TestMinimize_PinnedAndCapped(t *testing.T) {
	f, g := quadratic([]float64{0, 1, 1})

	pin := Constraint{Type: Eq, Coef: []float64{1, 0, 0}, Const: -0.4}
	capB := Constraint{Type: Ineq, Coef: []float64{0, -1, 0}, Const: 0.25}

	res, err := Minimize(Problem{
		Func:        f,
		Grad:        g,
		Bounds:      []Bound{{0, 1}, {0, 1}, {0, 1}},
		Constraints: []Constraint{budget(3), pin, capB},
	}, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, Settings{})
	require.NoError(t, err)

	require.True(t, res.Success, res.Message)
	assert.InDelta(t, 0.4, res.X[0], 1e-12)
	assert.InDelta(t, 0.25, res.X[1], 1e-9)
	assert.InDelta(t, 0.35, res.X[2], 1e-9)
}

func TestMinimize_Incompatible(t *testing.T) {
	f, g := quadratic([]float64{0, 0})

	tests := []struct {
		name   string
		bounds []Bound
		extra  []Constraint
	}{
		{"lower bounds exceed budget", []Bound{{0.6, 1}, {0.6, 1}}, nil},
		{"caps below budget", []Bound{{0, 1}, {0, 1}}, []Constraint{
			{Type: Ineq, Coef: []float64{-1, 0}, Const: 0.3},
			{Type: Ineq, Coef: []float64{0, -1}, Const: 0.3},
		}},
		{"conflicting pins", []Bound{{0, 1}, {0, 1}}, []Constraint{
			{Type: Eq, Coef: []float64{1, 0}, Const: -0.2},
			{Type: Eq, Coef: []float64{1, 0}, Const: -0.3},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Minimize(Problem{
				Func:        f,
				Grad:        g,
				Bounds:      tt.bounds,
				Constraints: append([]Constraint{budget(2)}, tt.extra...),
			}, []float64{0.5, 0.5}, Settings{})
			require.NoError(t, err)

			assert.False(t, res.Success)
			assert.Equal(t, optimize.Failure, res.Status)
			assert.Equal(t, MsgIncompatible, res.Message)
		})
	}
}

func TestMinimize_IterationLimit(t *testing.T) {
	obj := &Objective{
		Alphas:     []float64{1, 1.2},
		Betas:      []float64{0.5, 1.5},
		TargetBeta: 1,
	}

	res, err := Minimize(Problem{
		Func:        obj.Value,
		Grad:        obj.Gradient,
		Bounds:      []Bound{{0, 1}, {0, 1}},
		Constraints: []Constraint{budget(2)},
	}, []float64{0.5, 0.5}, Settings{MaxIterations: 1})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, optimize.IterationLimit, res.Status)
	assert.Equal(t, MsgIterationLimit, res.Message)
}

func TestMinimize_Malformed(t *testing.T) {
	f, g := quadratic([]float64{0, 0, 0})

	_, err := Minimize(Problem{
		Func:        f,
		Grad:        g,
		Constraints: []Constraint{{Type: Ineq, Coef: []float64{1, 1, 0}, Const: 0}},
	}, []float64{0, 0, 0}, Settings{})
	assert.ErrorIs(t, err, ErrUnsupportedConstraint)

	_, err = Minimize(Problem{Func: f, Grad: g, Bounds: []Bound{{0, 1}}}, []float64{0, 0, 0}, Settings{})
	assert.Error(t, err)

	_, err = Minimize(Problem{Func: f, Grad: g}, nil, Settings{})
	assert.Error(t, err)
}

func TestFeasibleSet_Project(t *testing.T) {
	set, err := newFeasibleSet(4,
		[]Bound{{0.05, 0.3}, {0.05, 0.3}, {0.05, 0.3}, {0.05, 0.3}},
		[]Constraint{budget(4)})
	require.NoError(t, err)
	require.True(t, set.feasible())

	inputs := [][]float64{
		{10, -3, 0.2, 7},
		{0.25, 0.25, 0.25, 0.25},
		{-1, -1, -1, -1},
		{0.9, 0.1, 0.0, 0.0},
	}

	for _, y := range inputs {
		dst := make([]float64, 4)
		set.project(dst, y)

		assert.InDelta(t, 1.0, floats.Sum(dst), 1e-12, "input %v", y)
		for _, v := range dst {
			assert.GreaterOrEqual(t, v, 0.05-1e-12)
			assert.LessOrEqual(t, v, 0.3+1e-12)
		}
	}
}
