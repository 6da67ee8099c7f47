package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alphaopt/internal/contracts"
	"github.com/wonny/alphaopt/internal/returns"
)

func TestTotalReturnPercent(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"gain", []float64{100, 105, 112.346}, 12.35},
		{"loss", []float64{200, 150}, -25},
		{"leading gap", []float64{math.NaN(), 50, 75}, 50},
		{"trailing gap", []float64{10, 11, math.NaN()}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.TotalReturnPercent(tt.prices)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestTotalReturnPercent_Errors(t *testing.T) {
	e := NewEngine()

	_, err := e.TotalReturnPercent(nil)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)

	_, err = e.TotalReturnPercent([]float64{0, 1})
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestBeta(t *testing.T) {
	e := NewEngine()
	bench := []float64{0.01, -0.02, 0.015, 0.003, -0.007}

	t.Run("double", func(t *testing.T) {
		asset := make([]float64, len(bench))
		for i, v := range bench {
			asset[i] = 2 * v
		}
		beta, err := e.Beta(asset, bench)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, beta, 1e-12)
	})

	t.Run("sample estimators", func(t *testing.T) {
		asset := []float64{0.02, -0.01, 0.0, 0.01, -0.005}

		var mx, my float64
		for i := range bench {
			mx += asset[i]
			my += bench[i]
		}
		n := float64(len(bench))
		mx, my = mx/n, my/n

		var cov, vr float64
		for i := range bench {
			cov += (asset[i] - mx) * (bench[i] - my)
			vr += (bench[i] - my) * (bench[i] - my)
		}
		want := (cov / (n - 1)) / (vr / (n - 1))

		beta, err := e.Beta(asset, bench)
		require.NoError(t, err)
		assert.InDelta(t, want, beta, 1e-12)
	})
}

func TestBeta_Errors(t *testing.T) {
	e := NewEngine()

	_, err := e.Beta([]float64{0.1}, []float64{0.1})
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)

	_, err = e.Beta([]float64{0.1, 0.2}, []float64{0.1})
	assert.ErrorIs(t, err, contracts.ErrAlignment)

	_, err = e.Beta([]float64{0.1, 0.2}, []float64{0.05, 0.05})
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestCalculate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(symbol string, closes ...float64) contracts.PriceSeries {
		s := contracts.PriceSeries{Symbol: symbol}
		for i, c := range closes {
			s.Points = append(s.Points, contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: c})
		}
		return s
	}

	table := contracts.NewPriceTable([]contracts.PriceSeries{
		mk("A", 100, 102, 101, 110),
		mk("B", 50, 49, 48, 45),
	})
	bench := mk("^NSEI", 1000, 1010, 1005, 1020)

	est, err := returns.NewEstimator().Estimate(table, &bench)
	require.NoError(t, err)

	report, err := NewEngine().Calculate(est)
	require.NoError(t, err)

	assert.Equal(t, 2.0, report.MarketReturnPercent)
	require.Len(t, report.Profiles, 2)

	a := report.Profiles[0]
	assert.Equal(t, "A", a.Ticker)
	assert.Equal(t, 10.0, a.StockReturnPercent)
	assert.InDelta(t, 8.0, a.Alpha, 1e-9)

	b := report.Profiles[1]
	assert.Equal(t, -10.0, b.StockReturnPercent)
	assert.InDelta(t, -12.0, b.Alpha, 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.236))
	assert.Equal(t, -0.5, Round2(-0.499999))
	assert.Equal(t, 0.12, Round2(0.125))
}
