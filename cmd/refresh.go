package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"slibuy-scraper/models"
	"slibuy-scraper/utils"
)

var flagRefreshWatched bool

func init() {
	refreshCmd := &cobra.Command{
		Use:   "refresh [id...]",
		Short: "Re-scrape single listings from their own pages",
		RunE:  runRefresh,
	}
	refreshCmd.Flags().BoolVar(&flagRefreshWatched, "watched", false, "refresh every watched listing")

	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !flagRefreshWatched {
		return fmt.Errorf("give listing ids or --watched")
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	cache, err := a.state.LoadCache(ctx)
	if err != nil {
		return err
	}

	ids := args
	if flagRefreshWatched {
		watch, err := a.state.LoadWatch(ctx)
		if err != nil {
			return err
		}
		ids = append(ids, watch.Keys()...)
	}

	var targets []*models.Listing
	seen := utils.NewKeySet()
	for _, id := range ids {
		if !seen.Add(id) {
			continue
		}
		l, ok := cache[id]
		if !ok {
			a.logger.Warn("[refresh] %s is not in the cache, skipping", id)
			continue
		}
		targets = append(targets, l)
	}
	if len(targets) == 0 {
		return fmt.Errorf("nothing to refresh")
	}

	if _, err := a.Fetcher(ctx); err != nil {
		return err
	}

	pool := utils.NewWorkerPool(ctx, a.cfg.MaxConcurrency, time.Duration(a.cfg.RateLimitMs)*time.Millisecond)
	var mu sync.Mutex
	failed := 0
	for _, l := range targets {
		l := l
		pool.Submit(func(ctx context.Context) {
			if _, err := a.refreshOne(ctx, l); err != nil {
				a.logger.Warn("[refresh] %s: %v", l.ID, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			a.logger.Info("[refresh] %s updated", l.ID)
		})
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	a.logger.Info("[refresh] %d refreshed, %d failed", len(targets)-failed, failed)
	if failed == len(targets) {
		return fmt.Errorf("every refresh failed")
	}
	return nil
}
