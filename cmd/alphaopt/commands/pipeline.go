package commands

import (
	"context"
	"fmt"

	"github.com/wonny/alphaopt/internal/audit"
	"github.com/wonny/alphaopt/internal/brain"
	"github.com/wonny/alphaopt/internal/external/yahoo"
	"github.com/wonny/alphaopt/internal/portfolio"
	"github.com/wonny/alphaopt/internal/returns"
	"github.com/wonny/alphaopt/internal/risk"
	"github.com/wonny/alphaopt/internal/strategyconfig"
	"github.com/wonny/alphaopt/pkg/config"
	"github.com/wonny/alphaopt/pkg/httputil"
	"github.com/wonny/alphaopt/pkg/logger"
	"github.com/wonny/alphaopt/pkg/redis"
)

// pipeline bundles the wired orchestrator and its resources
type pipeline struct {
	orchestrator *brain.Orchestrator
	profile      *strategyconfig.Config
	profileHash  string
	redis        *redis.Client
}

// buildPipeline wires the optimization pipeline from config
func buildPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pipeline, error) {
	// 1. Optimizer profile
	profile, err := strategyconfig.LoadOrDefault(cfg.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	hash, err := strategyconfig.Hash(profile)
	if err != nil {
		return nil, fmt.Errorf("hash profile: %w", err)
	}
	for _, w := range strategyconfig.CheckWarnings(profile) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Profile warning")
	}

	// 2. Redis (shared rate limit, optional)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 3. HTTP client + Yahoo client
	httpClient := httputil.New(cfg, log)
	if rdb.Enabled() {
		httpClient.WithRateLimiter(redis.NewRateLimiter(rdb, "alphaopt"), redis.YahooRateLimit(cfg.Yahoo.RatePerSec))
	}
	yahooClient := yahoo.NewClient(httpClient, cfg.Yahoo, log)

	// 4. Stages
	orchestrator := brain.NewOrchestrator(
		yahooClient,
		returns.NewEstimator(),
		risk.NewEngine(),
		portfolio.NewOptimizer(profile.SolverSettings(), log),
		audit.NewAggregator(yahooClient, cfg.Yahoo.MaxConcurrency, log),
		profile.BenchmarkOr(cfg.BenchmarkSymbol),
		hash,
		log,
	)

	log.WithFields(map[string]interface{}{
		"strategy_id":  profile.Meta.StrategyID,
		"profile_hash": hash,
		"benchmark":    profile.BenchmarkOr(cfg.BenchmarkSymbol),
		"redis":        rdb.Enabled(),
	}).Info("Pipeline initialized")

	return &pipeline{
		orchestrator: orchestrator,
		profile:      profile,
		profileHash:  hash,
		redis:        rdb,
	}, nil
}

// Close releases pipeline resources
func (p *pipeline) Close() error {
	return p.redis.Close()
}
