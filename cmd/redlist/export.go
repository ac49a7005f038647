package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/redlist/internal/debuglog"
	"github.com/pders01/redlist/internal/notice"
	"github.com/pders01/redlist/internal/report"
	"github.com/pders01/redlist/internal/storage"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write saved notices as a Markdown report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer store.Close()

		saved, err := store.SavedNotices()
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportPath != "" {
			f, err := os.Create(exportPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", exportPath, err)
			}
			defer f.Close()
			w = f
		}

		if err := report.WriteSaved(w, saved, time.Now()); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		if exportPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notice(s) to %s\n", len(saved), exportPath)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func savedToNotices(saved []*storage.SavedNotice) []*notice.Notice {
	notices := make([]*notice.Notice, 0, len(saved))
	for _, s := range saved {
		if s.Notice != nil {
			notices = append(notices, s.Notice)
		}
	}
	return notices
}
