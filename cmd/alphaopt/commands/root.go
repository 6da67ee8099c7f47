package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/alphaopt/pkg/config"
)

var (
	// Global flags
	profileFile string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alphaopt",
	Short: "alphaopt - alpha/beta 포트폴리오 최적화",
	Long: `alphaopt Unified CLI

벤치마크 대비 알파를 최대화하는 비중 최적화 서비스.
가격 수집 → 수익률 → 알파/베타 → 최적화 → 업종 집계.

Usage:
  go run ./cmd/alphaopt [command]

Examples:
  go run ./cmd/alphaopt api
  go run ./cmd/alphaopt optimize --tickers INFY.NS,TCS.NS,HDFCBANK.NS --start 2022-01-01 --end 2024-01-01
  go run ./cmd/alphaopt profile check config/optimizer.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&profileFile, "profile", "", "optimizer profile YAML (default is $OPTIMIZER_PROFILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads env config and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if profileFile != "" {
		cfg.ProfilePath = profileFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
