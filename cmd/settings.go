package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"slibuy-scraper/models"
	"slibuy-scraper/services"
	"slibuy-scraper/storage"
)

var flagSettingsFormat string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change the saved view settings",
}

func init() {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsShow,
	}
	showCmd.Flags().StringVar(&flagSettingsFormat, "format", "yaml", "yaml or json")

	settingsCmd.AddCommand(showCmd)
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "set <key>=<value>...",
		Short: "Change settings (keys: " + strings.Join(storage.SettingKeys, ", ") + ")",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSettingsSet,
	})
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml|file.json5>",
		Short: "Load settings from a file; keys missing from the file are kept",
		Args:  cobra.ExactArgs(1),
		RunE:  runSettingsImport,
	})
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "export <file.yaml|file.json>",
		Short: "Write the saved settings to a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSettingsExport,
	})
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Edit settings interactively",
		Args:  cobra.NoArgs,
		RunE:  runSettingsEdit,
	})
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.state.SaveSettings(cmd.Context(), models.DefaultSettings())
		},
	})

	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.state.LoadSettings(cmd.Context())
	if err != nil {
		return err
	}
	data, err := storage.EncodeSettings(s, flagSettingsFormat)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.state.LoadSettings(cmd.Context())
	if err != nil {
		return err
	}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", arg)
		}
		if err := storage.ApplySetting(&s, key, value); err != nil {
			return err
		}
	}
	if err := a.state.SaveSettings(cmd.Context(), s); err != nil {
		return err
	}
	fmt.Println("Settings saved.")
	return nil
}

func runSettingsImport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cur, err := a.state.LoadSettings(cmd.Context())
	if err != nil {
		return err
	}
	s, err := storage.ReadSettingsFile(args[0], cur)
	if err != nil {
		return err
	}
	if err := a.state.SaveSettings(cmd.Context(), s); err != nil {
		return err
	}
	fmt.Println("Imported settings from", args[0])
	return nil
}

func runSettingsExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.state.LoadSettings(cmd.Context())
	if err != nil {
		return err
	}
	if err := storage.WriteSettingsFile(args[0], s); err != nil {
		return err
	}
	fmt.Println("Settings written to", args[0])
	return nil
}

const (
	editSave   = "Save and exit"
	editCancel = "Cancel"
)

func runSettingsEdit(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.state.LoadSettings(cmd.Context())
	if err != nil {
		return err
	}

	for {
		items := make([]string, 0, len(storage.SettingKeys)+2)
		for _, k := range storage.SettingKeys {
			items = append(items, fmt.Sprintf("%-14s %s", k, storage.SettingValue(s, k)))
		}
		items = append(items, editSave, editCancel)

		prompt := promptui.Select{
			Label: "Select setting",
			Items: items,
			Size:  len(items),
		}
		idx, choice, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("selection cancelled")
		}
		switch choice {
		case editSave:
			if err := a.state.SaveSettings(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Println("Settings saved.")
			return nil
		case editCancel:
			return nil
		}

		key := storage.SettingKeys[idx]
		value, err := promptValue(key, s)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) {
				return fmt.Errorf("selection cancelled")
			}
			continue
		}
		if err := storage.ApplySetting(&s, key, value); err != nil {
			fmt.Println(err)
		}
	}
}

// promptValue asks for a new value, offering a list where the choices are
// fixed.
func promptValue(key string, s models.Settings) (string, error) {
	var choices []string
	switch key {
	case "range":
		choices = []string{string(models.RangeAll), string(models.RangeToday), string(models.Range2Days), string(models.Range3Days)}
	case "sortKey":
		for _, k := range services.SortKeys {
			choices = append(choices, string(k))
		}
	case "hideBlacklist", "targetsOnly", "hideEnded", "watchOnly", "sortDesc", "targetsFirst":
		choices = []string{"true", "false"}
	}

	if len(choices) > 0 {
		sel := promptui.Select{Label: key, Items: choices}
		_, v, err := sel.Run()
		return v, err
	}

	p := promptui.Prompt{
		Label:   key,
		Default: storage.SettingValue(s, key),
	}
	if key == "priceMin" || key == "priceMax" {
		p.Validate = func(in string) error {
			if _, err := strconv.ParseFloat(strings.TrimSpace(in), 64); err != nil {
				return fmt.Errorf("not a number")
			}
			return nil
		}
	}
	return p.Run()
}
