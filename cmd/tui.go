package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"slibuy-scraper/ui"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Browse the cache interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The screen belongs to the UI, so logs go to LOG_FILE.
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			p := tea.NewProgram(ui.NewModel(cmd.Context(), a), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	})
}
