package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leap-analytics/gymscope/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "gymscope",
	Short: "SF gym accessibility analytics dashboard",
	Long:  "Serves an interactive dashboard over the precomputed gym-accessibility mart: choropleth map, data table, and opportunity analytics for San Francisco census block groups.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
