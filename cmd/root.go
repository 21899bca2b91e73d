package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/insights-agent/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "insights-agent",
	Short: "Natural-language router for analytics and SEO questions",
	Long:  "Routes natural-language questions to a GA4 analytics agent and a crawl-export SEO agent, decomposing multi-source questions and aggregating the answers.",
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
