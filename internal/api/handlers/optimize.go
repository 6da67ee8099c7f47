package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wonny/alphaopt/internal/contracts"
	"github.com/wonny/alphaopt/pkg/logger"
)

// Optimizer runs one optimization
type Optimizer interface {
	Optimize(ctx context.Context, runID string, req *contracts.OptimizationRequest) (*contracts.OptimizationResult, error)
}

// OptimizeHandler handles POST /optimize
type OptimizeHandler struct {
	optimizer Optimizer
	defaults  contracts.Defaults
	timeout   time.Duration
	strict    bool // map pipeline errors to non-200 statuses
	logger    *logger.Logger
	now       func() time.Time
}

// NewOptimizeHandler creates a new optimize handler
func NewOptimizeHandler(
	optimizer Optimizer,
	defaults contracts.Defaults,
	timeout time.Duration,
	strict bool,
	log *logger.Logger,
) *OptimizeHandler {
	return &OptimizeHandler{
		optimizer: optimizer,
		defaults:  defaults,
		timeout:   timeout,
		strict:    strict,
		logger:    log,
		now:       time.Now,
	}
}

// Optimize handles POST /optimize
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	requestID := RequestIDFromContext(r.Context())

	var input contracts.OptimizeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req, err := input.ToRequest(h.defaults, h.now())
	if err != nil {
		h.fail(w, requestID, err)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.optimizer.Optimize(ctx, requestID, req)
	if err != nil {
		h.fail(w, requestID, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *OptimizeHandler) fail(w http.ResponseWriter, requestID string, err error) {
	status := StatusFor(err, h.strict)

	h.logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"status":     status,
	}).WithError(err).Warn("Optimization request failed")

	respondError(w, status, err.Error())
}

// StatusFor maps a pipeline error to an HTTP status.
// Missing tickers is always 400; everything else is 200 unless strict.
func StatusFor(err error, strict bool) int {
	if errors.Is(err, contracts.ErrMissingTickers) {
		return http.StatusBadRequest
	}
	if !strict {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, contracts.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrDataFetch):
		return http.StatusBadGateway
	case errors.Is(err, contracts.ErrEmptyData),
		errors.Is(err, contracts.ErrAlignment),
		errors.Is(err, contracts.ErrInsufficientData),
		errors.Is(err, contracts.ErrOptimizationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
