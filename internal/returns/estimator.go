package returns

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/alphaopt/internal/contracts"
)

// Estimator converts prices into aligned daily returns
// ⭐ SSOT: 가격 → 수익률 변환은 여기서만 (순수 계산기)
type Estimator struct{}

// NewEstimator creates a return estimator
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate is the output of one estimation pass
type Estimate struct {
	Prices    *contracts.PriceTable  // kept tickers only, unaligned
	Benchmark *contracts.PriceSeries // unaligned
	Excluded  []string
	Aligned   *contracts.AlignedReturns
}

// Estimate excludes incomplete tickers, converts to returns and aligns with the benchmark
func (e *Estimator) Estimate(table *contracts.PriceTable, benchmark *contracts.PriceSeries) (*Estimate, error) {
	kept, excluded, err := e.Exclude(table)
	if err != nil {
		return nil, err
	}

	assets := make(map[string]contracts.ReturnSeries, len(kept.Tickers))
	for _, ticker := range kept.Tickers {
		assets[ticker] = e.PercentChange(kept.Dates, kept.Columns[ticker])
	}

	bench := e.PercentChange(benchmark.Dates(), benchmark.Closes())

	aligned, err := e.Align(kept.Tickers, assets, bench)
	if err != nil {
		return nil, err
	}

	return &Estimate{
		Prices:    kept,
		Benchmark: benchmark,
		Excluded:  excluded,
		Aligned:   aligned,
	}, nil
}

// Exclude drops every ticker column holding a missing value anywhere in range
func (e *Estimator) Exclude(table *contracts.PriceTable) (*contracts.PriceTable, []string, error) {
	kept := &contracts.PriceTable{
		Dates:   table.Dates,
		Tickers: make([]string, 0, len(table.Tickers)),
		Columns: make(map[string][]float64, len(table.Tickers)),
		Errors:  make(map[string]error),
	}
	excluded := make([]string, 0)

	for _, ticker := range table.Tickers {
		if table.HasMissing(ticker) {
			excluded = append(excluded, ticker)
			continue
		}
		kept.Tickers = append(kept.Tickers, ticker)
		kept.Columns[ticker] = table.Columns[ticker]
	}

	if len(kept.Tickers) == 0 || len(kept.Dates) == 0 {
		return nil, excluded, contracts.ErrEmptyData
	}

	return kept, excluded, nil
}

// PercentChange computes first-difference percent change; the first row is dropped.
// Values are fractions (0.01 = 1%).
func (e *Estimator) PercentChange(dates []time.Time, prices []float64) contracts.ReturnSeries {
	if len(prices) < 2 {
		return contracts.ReturnSeries{Dates: []time.Time{}, Values: []float64{}}
	}

	out := contracts.ReturnSeries{
		Dates:  make([]time.Time, 0, len(prices)-1),
		Values: make([]float64, 0, len(prices)-1),
	}
	for i := 1; i < len(prices); i++ {
		prev, curr := prices[i-1], prices[i]
		r := (curr - prev) / prev
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out.Dates = append(out.Dates, dates[i])
		out.Values = append(out.Values, r)
	}
	return out
}

// Align restricts asset and benchmark returns to their common dates
func (e *Estimator) Align(tickers []string, assets map[string]contracts.ReturnSeries, benchmark contracts.ReturnSeries) (*contracts.AlignedReturns, error) {
	common := make(map[int64]int, benchmark.Len())
	for i, d := range benchmark.Dates {
		common[dayKey(d)] = i
	}

	// 자산 간 공통 날짜 교집합
	for _, ticker := range tickers {
		series, ok := assets[ticker]
		if !ok {
			return nil, fmt.Errorf("%w: no returns for %s", contracts.ErrAlignment, ticker)
		}
		present := make(map[int64]bool, series.Len())
		for _, d := range series.Dates {
			present[dayKey(d)] = true
		}
		for key := range common {
			if !present[key] {
				delete(common, key)
			}
		}
	}

	if len(common) == 0 {
		return nil, contracts.ErrAlignment
	}

	aligned := &contracts.AlignedReturns{
		Dates:     make([]time.Time, 0, len(common)),
		Tickers:   tickers,
		Assets:    make(map[string][]float64, len(tickers)),
		Benchmark: make([]float64, 0, len(common)),
	}

	// 벤치마크 순서(오름차순)를 기준 인덱스로 사용
	for i, d := range benchmark.Dates {
		if _, ok := common[dayKey(d)]; !ok {
			continue
		}
		aligned.Dates = append(aligned.Dates, d)
		aligned.Benchmark = append(aligned.Benchmark, benchmark.Values[i])
	}

	for _, ticker := range tickers {
		series := assets[ticker]
		byDay := make(map[int64]float64, series.Len())
		for i, d := range series.Dates {
			byDay[dayKey(d)] = series.Values[i]
		}
		col := make([]float64, len(aligned.Dates))
		for i, d := range aligned.Dates {
			col[i] = byDay[dayKey(d)]
		}
		aligned.Assets[ticker] = col
	}

	return aligned, nil
}

func dayKey(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}
