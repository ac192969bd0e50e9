package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"slibuy-scraper/models"
	"slibuy-scraper/services"
	"slibuy-scraper/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage the set of watched listing ids",
}

func init() {
	watchCmd.AddCommand(&cobra.Command{
		Use:   "add <id>...",
		Short: "Watch listings",
		Args:  cobra.MinimumNArgs(1),
		RunE:  setWatched(true),
	})
	watchCmd.AddCommand(&cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Stop watching listings",
		Args:    cobra.MinimumNArgs(1),
		RunE:    setWatched(false),
	})
	watchCmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "Show watched listings",
		Args:  cobra.NoArgs,
		RunE:  runWatchList,
	})

	rootCmd.AddCommand(watchCmd)
}

func setWatched(on bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		watch, err := a.state.SetWatched(cmd.Context(), on, args...)
		if err != nil {
			return err
		}
		fmt.Printf("%d watched.\n", watch.Size())
		return nil
	}
}

func runWatchList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cache, watch, settings, err := a.Load(cmd.Context())
	if err != nil {
		return err
	}

	ids := watch.Keys()
	sort.Strings(ids)
	now := a.now()
	views := make([]*services.View, 0, len(ids))
	for _, id := range ids {
		l, ok := cache[id]
		if !ok {
			l = &models.Listing{ID: id, Title: "(not cached)"}
		}
		views = append(views, services.NewView(l, settings, watch, now))
	}
	ui.RenderTable(os.Stdout, views, now)
	return nil
}
