package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the listing cache",
}

func init() {
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached listing (settings and watch list are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.state.ClearCache(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Cache cleared.")
			return nil
		},
	})
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print how many listings are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			cache, err := a.state.LoadCache(cmd.Context())
			if err != nil {
				return err
			}
			now := a.now()
			ended := 0
			for _, l := range cache {
				if l.Ended(now) {
					ended++
				}
			}
			fmt.Printf("%d cached, %d open, %d ended\n", len(cache), len(cache)-ended, ended)
			return nil
		},
	})

	rootCmd.AddCommand(cacheCmd)
}
