package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagDebug bool
	flagStore string
)

var rootCmd = &cobra.Command{
	Use:           "slibuy",
	Short:         "Scrape, cache and browse SliBuy auction listings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "state backend: sqlite or postgres (overrides STORE_DRIVER)")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context so long-running work stops cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
