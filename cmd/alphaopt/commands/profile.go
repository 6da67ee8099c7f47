package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/alphaopt/internal/strategyconfig"
)

// profileCmd represents the profile command group
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "최적화 프로필(YAML) 관리",
}

// profileCheckCmd validates a profile file
var profileCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "프로필 검증 + 해시 출력",
	Long: `최적화 프로필 YAML을 검증하고 SHA-256 해시를 출력합니다.

Example:
  go run ./cmd/alphaopt profile check config/optimizer.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileCheck,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileCheckCmd)
}

func runProfileCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, _, err := strategyconfig.Load(args[0])
	if err != nil {
		return err
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, doubleSeparator)
	fmt.Fprintf(out, "  Strategy  : %s (v%s)\n", cfg.Meta.StrategyID, cfg.Meta.Version)
	fmt.Fprintf(out, "  Benchmark : %s\n", cfg.Benchmark.Symbol)
	fmt.Fprintf(out, "  Defaults  : target_beta=%.2f min=%.2f%% max=%.2f%% maximize_alpha=%t\n",
		cfg.Defaults.TargetBeta, cfg.Defaults.MinWeightPct, cfg.Defaults.MaxWeightPct, cfg.Defaults.MaximizeAlpha)
	fmt.Fprintf(out, "  Solver    : max_iterations=%d tolerance=%g\n", cfg.Solver.MaxIterations, cfg.Solver.Tolerance)
	fmt.Fprintf(out, "  Hash      : %s\n", hash)
	fmt.Fprintln(out, singleSeparator)

	for _, w := range strategyconfig.CheckWarnings(cfg) {
		PrintWarning(out, fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}

	PrintSuccess(out, "Profile is valid")
	return nil
}
