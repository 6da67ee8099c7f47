package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/alphaopt/internal/contracts"
)

// chartResponse mirrors the v8 chart API payload
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Fetch fetches every ticker concurrently and assembles them in request order.
// A failed symbol becomes an all-NaN column; only a total failure is an error.
func (c *Client) Fetch(ctx context.Context, tickers []string, start, end time.Time) (*contracts.PriceTable, error) {
	series := make([]contracts.PriceSeries, len(tickers))
	errs := make([]error, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, ticker := range tickers {
		g.Go(func() error {
			s, err := c.FetchSeries(gctx, ticker, start, end)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				series[i] = contracts.PriceSeries{Symbol: ticker}
				return nil
			}
			series[i] = *s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDataFetch, err)
	}

	table := contracts.NewPriceTable(series)

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		table.Errors[tickers[i]] = err
		c.logger.WithFields(map[string]interface{}{
			"ticker": tickers[i],
			"error":  err.Error(),
		}).Warn("Failed to fetch prices")
	}

	if len(tickers) > 0 && failed == len(tickers) {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDataFetch, errors.Join(errs...))
	}

	return table, nil
}

// FetchBenchmark fetches the benchmark series
func (c *Client) FetchBenchmark(ctx context.Context, symbol string, start, end time.Time) (*contracts.PriceSeries, error) {
	s, err := c.FetchSeries(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w (market data %s): %v", contracts.ErrDataFetch, symbol, err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("%w (market data %s): no prices in range", contracts.ErrDataFetch, symbol)
	}
	return s, nil
}

// FetchSeries fetches daily adjusted closes in [start, end).
// A zero start means the full available history.
// ⭐ SSOT: Yahoo chart API 호출은 이 함수에서만
func (c *Client) FetchSeries(ctx context.Context, symbol string, start, end time.Time) (*contracts.PriceSeries, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("includeAdjustedClose", "true")
	params.Set("events", "div,splits")
	if start.IsZero() {
		params.Set("range", "max")
	} else {
		params.Set("period1", strconv.FormatInt(start.Unix(), 10))
		params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	}

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.chartURL, url.PathEscape(symbol), params.Encode())

	status, body, err := c.fetch(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	var resp chartResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		if status != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", status)
		}
		return nil, fmt.Errorf("parse chart response failed: %w", jsonErr)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", status)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart result for %s", symbol)
	}

	series := parseChartResult(symbol, resp.Chart.Result[0], start, end)

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  series.Len(),
	}).Debug("Fetched prices")

	return series, nil
}

// parseChartResult converts one chart result into a series, keeping dates in [start, end)
func parseChartResult(symbol string, r chartResult, start, end time.Time) *contracts.PriceSeries {
	// adjclose 우선, 없으면 quote.close
	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	series := &contracts.PriceSeries{
		Symbol: symbol,
		Points: make([]contracts.PricePoint, 0, len(r.Timestamp)),
	}

	seen := make(map[int64]int, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		// 거래소 현지 날짜 기준
		local := time.Unix(ts+r.Meta.GMTOffset, 0).UTC()
		y, m, d := local.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

		if !start.IsZero() && date.Before(start) {
			continue
		}
		if !end.IsZero() && !date.Before(end) {
			continue
		}

		// 빈 행(null)은 건너뜀
		if i >= len(closes) || closes[i] == nil || math.IsNaN(*closes[i]) {
			continue
		}
		value := *closes[i]

		// 같은 날짜가 중복되면 마지막 값 사용
		if idx, ok := seen[date.Unix()]; ok {
			series.Points[idx].Close = value
			continue
		}
		seen[date.Unix()] = len(series.Points)
		series.Points = append(series.Points, contracts.PricePoint{Date: date, Close: value})
	}

	return series
}
