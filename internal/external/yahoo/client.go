package yahoo

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/alphaopt/pkg/config"
	"github.com/wonny/alphaopt/pkg/httputil"
	"github.com/wonny/alphaopt/pkg/logger"
)

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient  *httputil.Client
	logger      *logger.Logger
	chartURL    string
	profileURL  string
	concurrency int
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, log *logger.Logger) *Client {
	concurrency := cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Client{
		httpClient:  httpClient,
		logger:      log,
		chartURL:    strings.TrimRight(cfg.ChartURL, "/"),
		profileURL:  strings.TrimRight(cfg.ProfileURL, "/"),
		concurrency: concurrency,
	}
}

// fetch returns the status code and body of a GET
func (c *Client) fetch(ctx context.Context, fullURL string) (int, []byte, error) {
	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, body, nil
}
