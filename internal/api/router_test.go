package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alphaopt/internal/api/handlers"
	"github.com/wonny/alphaopt/internal/contracts"
	"github.com/wonny/alphaopt/pkg/logger"
)

type stubOptimizer struct {
	runIDs []string
}

func (s *stubOptimizer) Optimize(_ context.Context, runID string, req *contracts.OptimizationRequest) (*contracts.OptimizationResult, error) {
	s.runIDs = append(s.runIDs, runID)
	return &contracts.OptimizationResult{Tickers: req.Tickers}, nil
}

func newTestRouter(opt handlers.Optimizer) http.Handler {
	h := handlers.NewOptimizeHandler(opt, contracts.DefaultRequestDefaults(), time.Minute, false, logger.Nop())
	return NewRouter(h, logger.Nop())
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubOptimizer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOptimizeRoutes(t *testing.T) {
	opt := &stubOptimizer{}
	router := newTestRouter(opt)

	for _, path := range []string{"/optimize", "/api/optimize"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"tickers":["A"]}`))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	}

	require.Len(t, opt.runIDs, 2)
	assert.NotEqual(t, opt.runIDs[0], opt.runIDs[1])
}

func TestRequestIDPropagation(t *testing.T) {
	opt := &stubOptimizer{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/optimize", strings.NewReader(`{"tickers":["A"]}`))
	req.Header.Set(RequestIDHeader, "client-42")

	newTestRouter(opt).ServeHTTP(rec, req)

	assert.Equal(t, "client-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, []string{"client-42"}, opt.runIDs)
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/optimize", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	newTestRouter(&stubOptimizer{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRecovery(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
