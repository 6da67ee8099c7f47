package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/alphaopt/pkg/config"
	"github.com/wonny/alphaopt/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Env: "development",
		Yahoo: config.YahooConfig{
			UserAgent: "alphaopt-test",
			Timeout:   5 * time.Second,
		},
	}
}

func TestNew(t *testing.T) {
	client := New(testConfig(), logger.Nop())
	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected timeout=5s, got %v", client.httpClient.Timeout)
	}

	if client.retryConfig.Enabled {
		t.Error("Expected retry to be disabled by default")
	}

	if client.limiter != nil {
		t.Error("Expected no local limiter when RatePerSec is zero")
	}
}

func TestNewWithRate(t *testing.T) {
	cfg := testConfig()
	cfg.Yahoo.RatePerSec = 2
	cfg.Yahoo.MaxRetries = 2

	client := New(cfg, logger.Nop())
	if client.limiter == nil {
		t.Fatal("Expected local limiter to be created")
	}
	if !client.retryConfig.Enabled || client.retryConfig.MaxRetries != 2 {
		t.Errorf("Expected 2 retries enabled, got %+v", client.retryConfig)
	}
}

func TestNewWithTimeout(t *testing.T) {
	client := NewWithTimeout(testConfig(), logger.Nop(), 7*time.Second)

	if client.httpClient.Timeout != 7*time.Second {
		t.Errorf("Expected timeout=7s, got %v", client.httpClient.Timeout)
	}
}

func TestGetSendsDefaultHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "alphaopt-test" {
			t.Errorf("Expected User-Agent alphaopt-test, got %s", ua)
		}
		if ref := r.Header.Get("Referer"); ref != "https://finance.yahoo.com/" {
			t.Errorf("Expected Referer header, got %s", ref)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop()).WithHeader("Referer", "https://finance.yahoo.com/")

	body, err := client.GetBody(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GET request failed: %v", err)
	}

	if string(body) != `{"status":"ok"}` {
		t.Errorf("Unexpected body: %s", body)
	}
}

func TestGetBodyStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("No data found, symbol may be delisted"))
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop())

	_, err := client.GetBody(context.Background(), server.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.StatusCode)
	}
}

func TestNoRetryByDefault(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop())

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", got)
	}
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop()).WithRetry(3, 10*time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Request failed after retries: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestDisableRetry(t *testing.T) {
	client := New(testConfig(), logger.Nop()).WithRetry(3, time.Second).DisableRetry()

	if client.retryConfig.Enabled {
		t.Error("Expected retry to be disabled")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			if got := IsRetryableError(tt.statusCode); got != tt.want {
				t.Errorf("IsRetryableError(%d) = %v, want %v", tt.statusCode, got, tt.want)
			}
		})
	}
}
