package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slibuy-scraper/models"
	"slibuy-scraper/storage"
)

func init() {
	rootCmd.AddCommand(keywordCmd(storage.Targets, "Keywords or ids to highlight; a target match overrides the blacklist"))
	rootCmd.AddCommand(keywordCmd(storage.Blacklist, "Keywords or ids to suppress when hideBlacklist is on"))
}

// keywordCmd builds the add/rm/ls tree for one keyword list.
func keywordCmd(list storage.KeywordList, short string) *cobra.Command {
	root := &cobra.Command{
		Use:   string(list),
		Short: short,
	}

	root.AddCommand(&cobra.Command{
		Use:   "add <keyword>...",
		Short: "Add keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.state.AddKeywords(cmd.Context(), list, args...)
			if err != nil {
				return err
			}
			printKeywords(list, s)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:     "rm <keyword>...",
		Aliases: []string{"remove"},
		Short:   "Remove keywords",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.state.RemoveKeywords(cmd.Context(), list, args...)
			if err != nil {
				return err
			}
			printKeywords(list, s)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.state.LoadSettings(cmd.Context())
			if err != nil {
				return err
			}
			printKeywords(list, s)
			return nil
		},
	})

	return root
}

func printKeywords(list storage.KeywordList, s models.Settings) {
	words := s.Targets
	if list == storage.Blacklist {
		words = s.Blacklist
	}
	if len(words) == 0 {
		fmt.Printf("No %s.\n", list)
		return
	}
	fmt.Printf("%s: %s\n", list, strings.Join(words, ", "))
}
