package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"slibuy-scraper/ui"
)

var (
	flagBidsOnce     bool
	flagBidsInterval time.Duration
)

func init() {
	bidsCmd := &cobra.Command{
		Use:     "mybids",
		Aliases: []string{"bids"},
		Short:   "Poll the bids page and print the status of each bid",
		Args:    cobra.NoArgs,
		RunE:    runMyBids,
	}
	bidsCmd.Flags().BoolVar(&flagBidsOnce, "once", false, "fetch once and exit")
	bidsCmd.Flags().DurationVar(&flagBidsInterval, "every", 0, "poll interval (default REFRESH_INTERVAL_MS)")

	rootCmd.AddCommand(bidsCmd)
}

func runMyBids(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := pollBids(ctx, a); err != nil || flagBidsOnce {
		return err
	}

	interval := flagBidsInterval
	if interval <= 0 {
		interval = a.cfg.RefreshInterval
	}
	// Ticks are handled inline, so a slow fetch delays the next one
	// instead of overlapping it.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := pollBids(ctx, a); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Warn("[mybids] %v", err)
			}
		}
	}
}

func pollBids(ctx context.Context, a *app) error {
	records, err := a.fetchPage(ctx, a.cfg.MyBidsPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\n%s  %d bids\n", a.now().Format("15:04:05"), len(records))
	ui.RenderBids(os.Stdout, records, a.now())
	return nil
}
