package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"slibuy-scraper/ui"
)

var (
	flagPages    int
	flagNoBar    bool
	flagScrapeLs bool
)

func init() {
	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape every result page, last to first, into the local cache",
		RunE:  runScrape,
	}
	scrapeCmd.Flags().IntVar(&flagPages, "pages", 0, "number of result pages (0 reads the count from page 1)")
	scrapeCmd.Flags().BoolVar(&flagNoBar, "no-progress", false, "log each page instead of drawing a progress bar")
	scrapeCmd.Flags().BoolVar(&flagScrapeLs, "list", false, "print the filtered table when done")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	var bar *ui.Progress
	onPage := func(page, total, records int) {
		if flagNoBar {
			a.logger.Info("[scrape] Page %d/%d: %d listings", page, total, records)
			return
		}
		if bar == nil {
			bar = ui.NewProgress(os.Stdout, "pages", total)
		}
		bar.Page(records)
	}

	cache, err := a.scrape(ctx, flagPages, onPage)
	if bar != nil {
		bar.Done()
	}
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	fmt.Printf("Cache holds %d listings.\n", len(cache))

	if flagScrapeLs {
		views, err := a.views(ctx, "", nil)
		if err != nil {
			return err
		}
		ui.RenderTable(os.Stdout, views, a.now())
	}
	return nil
}
