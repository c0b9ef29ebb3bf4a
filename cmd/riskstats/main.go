package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "riskstats",
	Short: "riskstats - risk/return statistics for a periodic return series",
	Long: `riskstats computes annualized return, volatility, risk-adjusted ratios
(Sharpe, Sortino, K-ratio), drawdown statistics and calendar-year buckets
from a single periodic return series, such as a strategy's equity curve.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
