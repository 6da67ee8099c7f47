package contracts

import (
	"math"
	"slices"
	"time"
)

// PricePoint is one daily adjusted close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"` // NaN when the source has no value
}

// PriceSeries is a single symbol's daily adjusted-close series, oldest first
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations
func (s *PriceSeries) Len() int {
	return len(s.Points)
}

// Dates returns the observation dates
func (s *PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		dates[i] = p.Date
	}
	return dates
}

// Closes returns the observation values
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// PriceTable holds one column per ticker on a shared date index.
// ⭐ SSOT: 가격 테이블 → 수익률 계산 입력
// Dates is the ascending union of every fetched date; a ticker with no value
// on a date holds NaN there. A ticker whose fetch failed is all NaN and its
// error is kept in Errors.
type PriceTable struct {
	Dates   []time.Time          `json:"dates"`
	Tickers []string             `json:"tickers"` // column order
	Columns map[string][]float64 `json:"columns"`
	Errors  map[string]error     `json:"-"`
}

// Column returns the price column of a ticker
func (t *PriceTable) Column(ticker string) ([]float64, bool) {
	col, ok := t.Columns[ticker]
	return col, ok
}

// HasMissing reports whether a ticker column contains any NaN
func (t *PriceTable) HasMissing(ticker string) bool {
	col, ok := t.Columns[ticker]
	if !ok || len(col) == 0 {
		return true
	}
	for _, v := range col {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Rows returns the number of dates
func (t *PriceTable) Rows() int {
	return len(t.Dates)
}

// NewPriceTable builds a table on the union of dates of the given series.
// Tickers keep the order of the series slice.
func NewPriceTable(series []PriceSeries) *PriceTable {
	seen := make(map[int64]time.Time)
	for _, s := range series {
		for _, p := range s.Points {
			day := truncateDay(p.Date)
			seen[day.Unix()] = day
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	index := make(map[int64]int, len(dates))
	for i, d := range dates {
		index[d.Unix()] = i
	}

	table := &PriceTable{
		Dates:   dates,
		Tickers: make([]string, 0, len(series)),
		Columns: make(map[string][]float64, len(series)),
		Errors:  make(map[string]error),
	}

	for _, s := range series {
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = math.NaN()
		}
		for _, p := range s.Points {
			col[index[truncateDay(p.Date).Unix()]] = p.Close
		}
		table.Tickers = append(table.Tickers, s.Symbol)
		table.Columns[s.Symbol] = col
	}

	return table
}

// ReturnSeries is a daily percent-change series
type ReturnSeries struct {
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// Len returns the number of observations
func (r *ReturnSeries) Len() int {
	return len(r.Values)
}

// AlignedReturns are asset and benchmark returns on one shared date index
// ⭐ 계약: 모든 컬럼은 동일한 날짜 인덱스를 가짐
type AlignedReturns struct {
	Dates     []time.Time          `json:"dates"`
	Tickers   []string             `json:"tickers"`
	Assets    map[string][]float64 `json:"assets"`
	Benchmark []float64            `json:"benchmark"`
}

// Len returns the number of aligned observations
func (a *AlignedReturns) Len() int {
	return len(a.Dates)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
