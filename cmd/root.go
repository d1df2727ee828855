package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "facebook-url-search",
	Short: "Find official Facebook pages for businesses",
	Long:  "Matches business names and locations to their official Facebook pages or groups via Google Custom Search and an optional AI judgment pass, scoring each candidate URL.",
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
