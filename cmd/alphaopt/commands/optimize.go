package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wonny/alphaopt/internal/contracts"
	"github.com/wonny/alphaopt/pkg/logger"
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "포트폴리오 최적화 1회 실행",
	Long: `API 서버 없이 최적화 파이프라인을 1회 실행합니다.

요청은 JSON 파일(--request) 또는 개별 플래그로 지정합니다.
비중 관련 값은 모두 퍼센트(0 ~ 100)입니다.

Examples:
  go run ./cmd/alphaopt optimize --request req.json
  go run ./cmd/alphaopt optimize --tickers INFY.NS,TCS.NS --start 2022-01-01 --end 2024-01-01 --table
  go run ./cmd/alphaopt optimize --tickers INFY.NS,TCS.NS,ITC.NS --fixed INFY.NS=40 --maximize-alpha=false --target-beta 0.8`,
	RunE: runOptimize,
}

var (
	optRequestFile   string
	optTickers       []string
	optStart         string
	optEnd           string
	optTargetBeta    float64
	optMinWeight     float64
	optMaxWeight     float64
	optMaximizeAlpha bool
	optFixed         map[string]string
	optTable         bool
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	// Flags
	optimizeCmd.Flags().StringVar(&optRequestFile, "request", "", "JSON request file (same payload as POST /optimize)")
	optimizeCmd.Flags().StringSliceVar(&optTickers, "tickers", nil, "comma separated tickers")
	optimizeCmd.Flags().StringVar(&optStart, "start", "", "start date (YYYY-MM-DD)")
	optimizeCmd.Flags().StringVar(&optEnd, "end", "", "end date, exclusive (YYYY-MM-DD)")
	optimizeCmd.Flags().Float64Var(&optTargetBeta, "target-beta", 1, "target portfolio beta")
	optimizeCmd.Flags().Float64Var(&optMinWeight, "min-weight", 5, "minimum weight per ticker (percent)")
	optimizeCmd.Flags().Float64Var(&optMaxWeight, "max-weight", 30, "maximum weight per ticker (percent)")
	optimizeCmd.Flags().BoolVar(&optMaximizeAlpha, "maximize-alpha", true, "ignore the beta target and maximize alpha")
	optimizeCmd.Flags().StringToStringVar(&optFixed, "fixed", nil, "fixed weights, e.g. INFY.NS=40,TCS.NS=10 (percent)")
	optimizeCmd.Flags().BoolVar(&optTable, "table", false, "print a table instead of JSON")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	// 2. Build request payload
	input, err := buildOptimizeInput(cmd)
	if err != nil {
		return err
	}

	// 3. Wire pipeline
	p, err := buildPipeline(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	req, err := input.ToRequest(p.profile.RequestDefaults(), time.Now().UTC())
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	out := cmd.OutOrStdout()

	if optTable {
		meta := RunMetadata{
			RunID:   runID,
			Tickers: req.Tickers,
			EndDate: req.EndDate.Format(contracts.DateLayout),
			Profile: p.profile.Meta.StrategyID,
		}
		if !req.StartDate.IsZero() {
			meta.StartDate = req.StartDate.Format(contracts.DateLayout)
		}
		PrintRunHeader(out, meta)
	}

	// 4. Run with deadline
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	result, err := p.orchestrator.Optimize(ctx, runID, req)
	if err != nil {
		return err
	}

	// 5. Output
	if optTable {
		PrintResultTable(out, result)
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// buildOptimizeInput reads --request or assembles the payload from flags.
// Only flags set explicitly override the profile defaults.
func buildOptimizeInput(cmd *cobra.Command) (*contracts.OptimizeInput, error) {
	input := &contracts.OptimizeInput{}

	if optRequestFile != "" {
		data, err := os.ReadFile(optRequestFile)
		if err != nil {
			return nil, fmt.Errorf("read request file: %w", err)
		}
		if err := json.Unmarshal(data, input); err != nil {
			return nil, fmt.Errorf("%w: parse request file: %v", contracts.ErrInvalidRequest, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("tickers") {
		input.Tickers = optTickers
	}
	if flags.Changed("start") {
		input.StartDate = optStart
	}
	if flags.Changed("end") {
		input.EndDate = optEnd
	}
	if flags.Changed("target-beta") {
		input.TargetBeta = &optTargetBeta
	}
	if flags.Changed("min-weight") {
		input.MinWeight = &optMinWeight
	}
	if flags.Changed("max-weight") {
		input.MaxWeight = &optMaxWeight
	}
	if flags.Changed("maximize-alpha") {
		input.MaximizeAlpha = &optMaximizeAlpha
	}
	if flags.Changed("fixed") {
		fixed, err := parseFixedWeights(optFixed)
		if err != nil {
			return nil, err
		}
		input.FixedWeights = fixed
	}

	return input, nil
}

// parseFixedWeights converts ticker=percent flag pairs
func parseFixedWeights(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for ticker, value := range raw {
		pct, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: fixed weight for %s: %v", contracts.ErrInvalidRequest, ticker, err)
		}
		out[ticker] = pct
	}
	return out, nil
}
