package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "seo-lead-finder",
	Short: "Find local businesses with poor SEO",
	Long:  "Searches Google Places for businesses by industry and location, scores each website with PageSpeed Insights, and ranks the businesses as HOT, WARM, or COLD sales leads.",
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
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
