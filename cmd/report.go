package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"slibuy-scraper/services"
	"slibuy-scraper/storage"
)

var flagWonOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reports over the cache and the won page",
}

func init() {
	reportCmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Print price, deal and bulk-group insights for the cache",
		Args:  cobra.NoArgs,
		RunE:  runReportSummary,
	})

	wonCmd := &cobra.Command{
		Use:   "won",
		Short: "Fetch the won page and print price, date and title as TSV",
		Args:  cobra.NoArgs,
		RunE:  runReportWon,
	}
	wonCmd.Flags().StringVarP(&flagWonOut, "out", "o", "", "write the report to this file instead of stdout")
	reportCmd.AddCommand(wonCmd)

	rootCmd.AddCommand(reportCmd)
}

func runReportSummary(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cache, watch, _, err := a.Load(cmd.Context())
	if err != nil {
		return err
	}
	insights := services.NewInsightService(a.logger)
	insights.Print(os.Stdout, insights.Generate(services.SortedRecords(cache), watch, a.now()))
	return nil
}

func runReportWon(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.fetchPage(cmd.Context(), a.cfg.WonPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no listings found on %s (is the browser profile logged in?)", a.cfg.PageURL(a.cfg.WonPath))
	}

	var w *storage.CSVWriter
	if flagWonOut != "" {
		if w, err = storage.CreateWonReport(flagWonOut); err != nil {
			return err
		}
	} else {
		w = storage.NewWonReportWriter(os.Stdout, nil)
	}
	if err := w.Write(records); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if flagWonOut != "" {
		a.logger.Info("[report] %d won listings written to %s", len(records), flagWonOut)
	}
	return nil
}
