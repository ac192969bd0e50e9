package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"slibuy-scraper/models"
	"slibuy-scraper/services"
	"slibuy-scraper/storage"
)

var (
	flagExportOut string
	flagExportRaw bool
)

func init() {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered listings to a CSV file",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	addViewFlags(exportCmd)
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "output file (default CSV_OUTPUT_DIR/listings-<date>.csv)")
	exportCmd.Flags().BoolVar(&flagExportRaw, "all-records", false, "export every cached listing, ignoring filters")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	var records []*models.Listing
	if flagExportRaw {
		cache, err := a.state.LoadCache(cmd.Context())
		if err != nil {
			return err
		}
		records = services.SortedRecords(cache)
	} else {
		views, err := a.views(cmd.Context(), flagQuery, applyViewFlags(cmd))
		if err != nil {
			return err
		}
		records = make([]*models.Listing, len(views))
		for i, v := range views {
			records[i] = v.Listing
		}
	}

	out := flagExportOut
	if out == "" {
		out = filepath.Join(a.cfg.CSVOutputDir, "listings-"+a.now().Format("2006-01-02")+".csv")
	}
	w, err := storage.NewCSVWriter(out)
	if err != nil {
		return err
	}
	if err := w.Write(records); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("%d listings written to %s\n", len(records), out)
	return nil
}
