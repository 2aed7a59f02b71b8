package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	trainConfigFile string
	env             string
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "vwapcast - 종목별 VWAP 회귀 파이프라인",
	Long: `vwapcast Unified CLI

NIFTY-50 일봉 데이터로 종목마다 MLP 회귀 모델을 학습하고
다음 VWAP 예측의 Train/Test RMSE를 리포트합니다.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant train --archive stockdata.zip
  go run ./cmd/quant data-check --archive stockdata.zip
  go run ./cmd/quant api
  go run ./cmd/quant scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&trainConfigFile, "config", "", "training config YAML (default: TRAIN_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}
