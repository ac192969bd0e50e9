package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"slibuy-scraper/services"
	"slibuy-scraper/ui"
)

var (
	flagBulkMin   int
	flagBulkQuery string
)

func init() {
	bulkCmd := &cobra.Command{
		Use:   "bulk",
		Short: "Summarise cached listings that share a title",
		Args:  cobra.NoArgs,
		RunE:  runBulk,
	}
	bulkCmd.Flags().IntVar(&flagBulkMin, "min", 2, "only groups with at least this many listings")
	bulkCmd.Flags().StringVarP(&flagBulkQuery, "query", "q", "", "only groups whose title contains this text")

	rootCmd.AddCommand(bulkCmd)
}

func runBulk(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cache, err := a.state.LoadCache(cmd.Context())
	if err != nil {
		return err
	}

	groups := services.BulkGroups(services.SortedRecords(cache), max(flagBulkMin, 1), a.now())
	if q := strings.ToLower(strings.TrimSpace(flagBulkQuery)); q != "" {
		kept := groups[:0]
		for _, g := range groups {
			if strings.Contains(g.Key, q) {
				kept = append(kept, g)
			}
		}
		groups = kept
	}
	ui.RenderBulk(os.Stdout, groups)
	return nil
}
