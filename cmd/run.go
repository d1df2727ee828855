package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/fetcher"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

var (
	runInput       string
	runOutput      string
	runConcurrency int
	runDelayMS     int
	runNoAI        bool
	runOffline     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process a business file and write result CSV",
	Long:  "Reads a CSV or XLSX file of business names and locations, resolves each row to a Facebook URL, and writes the results as CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		queries, err := readInput(runInput)
		if err != nil {
			return err
		}

		if runConcurrency > 0 {
			cfg.Batch.Concurrency = runConcurrency
		}
		if cmd.Flags().Changed("delay-ms") {
			cfg.Batch.DelayMillis = runDelayMS
		}

		env, err := newEnv(cfg, runOffline, runNoAI)
		if err != nil {
			return err
		}

		taskID := env.registry.Create(queries, cfg.Google.Country, cfg.Google.Language)
		if err := env.orchestrator.Run(cmd.Context(), taskID); err != nil {
			return eris.Wrap(err, "run: process batch")
		}

		t, err := env.registry.Get(taskID)
		if err != nil {
			return err
		}
		if t.Status == model.TaskFailed {
			return eris.Errorf("run: batch failed: %s", t.Error)
		}

		out, err := os.Create(runOutput)
		if err != nil {
			return eris.Wrap(err, "run: create output file")
		}
		defer out.Close() //nolint:errcheck

		if err := fetcher.WriteResultsCSV(out, t.Results); err != nil {
			return err
		}

		found := 0
		for _, r := range t.Results {
			if r.Found() {
				found++
			}
		}
		zap.L().Info("run: batch complete",
			zap.Int("rows", t.Total),
			zap.Int("found", found),
			zap.String("output", runOutput),
		)
		return nil
	},
}

// readInput parses the input file by extension: .xlsx is a workbook,
// everything else is treated as CSV.
func readInput(path string) ([]model.BusinessQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "run: read input file")
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fetcher.ParseXLSX(data)
	}
	return fetcher.ParseCSV(strings.NewReader(string(data)))
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "input CSV or XLSX file (required)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "results.csv", "output CSV file")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "concurrent rows (default from config)")
	runCmd.Flags().IntVar(&runDelayMS, "delay-ms", 0, "minimum delay between searches in milliseconds")
	runCmd.Flags().BoolVar(&runNoAI, "no-ai", false, "disable the AI judgment pass")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "use the stub search backend (no network)")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
