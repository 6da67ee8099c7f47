package contracts

import (
	"context"
	"time"
)

// PriceSeriesAdapter fetches daily adjusted-close prices
type PriceSeriesAdapter interface {
	// Fetch returns one column per ticker in request order.
	// A per-symbol failure yields an all-NaN column with the cause in PriceTable.Errors.
	Fetch(ctx context.Context, tickers []string, start, end time.Time) (*PriceTable, error)

	// FetchBenchmark returns the benchmark series
	FetchBenchmark(ctx context.Context, symbol string, start, end time.Time) (*PriceSeries, error)
}

// IndustryLookup resolves a ticker to an industry label.
// It never fails: errors come back as "Error: <message>".
type IndustryLookup interface {
	Lookup(ctx context.Context, ticker string) string
}

// IndustryLabelForError formats a lookup failure as a grouping label
func IndustryLabelForError(err error) string {
	return "Error: " + err.Error()
}
