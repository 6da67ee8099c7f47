package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wonny/alphaopt/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleSeparator = "═══════════════════════════════════════════════════════════"
	singleSeparator = "───────────────────────────────────────────────────────────"
)

// RunMetadata holds optimization run metadata
type RunMetadata struct {
	RunID     string
	Tickers   []string
	StartDate string // empty = max
	EndDate   string
	Profile   string
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(w io.Writer, meta RunMetadata) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleSeparator)
	fmt.Fprintln(w, "  Portfolio Optimization")
	fmt.Fprintln(w, singleSeparator)
	fmt.Fprintf(w, "  Run ID    : %s\n", meta.RunID)

	start := meta.StartDate
	if start == "" {
		start = "max"
	}
	fmt.Fprintf(w, "  Period    : %s ~ %s\n", start, meta.EndDate)
	fmt.Fprintf(w, "  Tickers   : %s\n", strings.Join(meta.Tickers, ", "))

	// Optional profile
	if meta.Profile != "" {
		fmt.Fprintf(w, "  Profile   : %s\n", meta.Profile)
	}
	fmt.Fprintln(w, singleSeparator)
}

// PrintResultTable prints weights, portfolio summary and industry breakdown
func PrintResultTable(w io.Writer, result *contracts.OptimizationResult) {
	fmt.Fprintf(w, "  %-16s %10s %10s %8s\n", "Ticker", "Weight(%)", "Alpha(%)", "Beta")
	fmt.Fprintln(w, singleSeparator)
	for i, ticker := range result.Tickers {
		fmt.Fprintf(w, "  %-16s %10.2f %10.2f %8.2f\n",
			ticker, result.WeightsPercent[i], result.AlphaPercent[i], result.Beta[i])
	}

	fmt.Fprintln(w, singleSeparator)
	fmt.Fprintf(w, "  Portfolio alpha  : %.2f%%\n", result.PortfolioAlphaPercent)
	fmt.Fprintf(w, "  Portfolio beta   : %.2f (target %.2f)\n", result.PortfolioBeta, result.TargetBeta)
	fmt.Fprintf(w, "  Market return    : %.2f%%\n", result.MarketReturnPercent)
	fmt.Fprintf(w, "  Portfolio return : %.2f%%\n", result.PortfolioReturnPercent)

	if len(result.IndustryWeightsPercent) > 0 {
		fmt.Fprintln(w, singleSeparator)
		fmt.Fprintln(w, "  Industry weights")
		for _, industry := range sortedIndustries(result.IndustryWeightsPercent) {
			fmt.Fprintf(w, "    %-40s %8.2f%%\n", industry, result.IndustryWeightsPercent[industry])
		}
	}

	if len(result.ExcludedTickers) > 0 {
		fmt.Fprintln(w, singleSeparator)
		fmt.Fprintf(w, "  Excluded  : %s\n", strings.Join(result.ExcludedTickers, ", "))
	}
	fmt.Fprintln(w, doubleSeparator)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %s\n", message)
	fmt.Fprintln(w)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// sortedIndustries orders industries by weight desc, then name
func sortedIndustries(weights map[string]float64) []string {
	out := make([]string, 0, len(weights))
	for k := range weights {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if weights[out[i]] != weights[out[j]] {
			return weights[out[i]] > weights[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
