package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"slibuy-scraper/models"
	"slibuy-scraper/services"
	"slibuy-scraper/ui"
)

var (
	flagQuery    string
	flagSort     string
	flagAsc      bool
	flagDesc     bool
	flagShowAll  bool
	flagWatched  bool
	flagTargets  bool
	flagRange    string
	flagLimit    int
	flagPriceMin float64
	flagPriceMax float64
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the cached listings through the saved filters",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	addViewFlags(listCmd)
	listCmd.Flags().IntVar(&flagLimit, "limit", 0, "print at most this many rows (0 = all)")

	rootCmd.AddCommand(listCmd)
}

// addViewFlags registers the one-off overrides of the saved settings shared
// by list and export.
func addViewFlags(c *cobra.Command) {
	c.Flags().StringVarP(&flagQuery, "query", "q", "", "only titles containing this text")
	c.Flags().StringVar(&flagSort, "sort", "", "sort key: endsAt, price, pct, title, age")
	c.Flags().BoolVar(&flagAsc, "asc", false, "sort ascending")
	c.Flags().BoolVar(&flagDesc, "desc", false, "sort descending")
	c.Flags().BoolVar(&flagShowAll, "all", false, "include ended listings")
	c.Flags().BoolVar(&flagWatched, "watched", false, "only watched listings")
	c.Flags().BoolVar(&flagTargets, "targets", false, "only listings matching a target keyword")
	c.Flags().StringVar(&flagRange, "range", "", "ending within: today, 2days, 3days or all")
	c.Flags().Float64Var(&flagPriceMin, "min", -1, "minimum price")
	c.Flags().Float64Var(&flagPriceMax, "max", -1, "maximum price")
}

func applyViewFlags(c *cobra.Command) func(*models.Settings) {
	return func(s *models.Settings) {
		if c.Flags().Changed("sort") {
			key := services.ParseSortKey(flagSort)
			s.SortKey = string(key)
			s.SortDesc = services.DefaultDesc(key)
		}
		switch {
		case flagAsc:
			s.SortDesc = false
		case flagDesc:
			s.SortDesc = true
		}
		if flagShowAll {
			s.HideEnded = false
		}
		if flagWatched {
			s.WatchOnly = true
		}
		if flagTargets {
			s.TargetsOnly = true
		}
		if flagRange != "" {
			s.Range = models.Range(flagRange)
		}
		if flagPriceMin >= 0 {
			s.PriceMin = flagPriceMin
		}
		if flagPriceMax >= 0 {
			s.PriceMax = flagPriceMax
		}
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	views, err := a.views(cmd.Context(), flagQuery, applyViewFlags(cmd))
	if err != nil {
		return err
	}
	if flagLimit > 0 && len(views) > flagLimit {
		views = views[:flagLimit]
	}
	ui.RenderTable(os.Stdout, views, a.now())
	return nil
}
