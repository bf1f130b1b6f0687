package commands

import (
	"os"
	"path/filepath"

	"pdcmap-backend/lib/serviceutil"
	"pdcmap-backend/lib/tabular"
	"pdcmap-backend/services/dataprep"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var previewRows *int

func init() {
	previewRows = previewCmd.Flags().Int("rows", 10, "The number of rows to print.")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <version>",
	Short: "Prints the head of a version's prepared dataset.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		version := args[0]

		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		layout, err := dataprep.NewVersionedLayout(
			filepath.Join(*repoRoot, cfg.OutputDirBase),
			version,
		)
		if err != nil {
			serviceutil.Fatal("failed to resolve layout", err)
		}

		dataset, err := tabular.ReadFile(filepath.Join(layout.DataPrepDir, cfg.PreparedFilename))
		if err != nil {
			serviceutil.Fatal("failed to read prepared dataset", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)

		header := make(table.Row, len(dataset.Columns))
		for i, col := range dataset.Columns {
			header[i] = col
		}
		t.AppendHeader(header)

		for i, row := range dataset.Rows {
			if i >= *previewRows {
				break
			}
			record := make(table.Row, len(dataset.Columns))
			for j, col := range dataset.Columns {
				record[j] = row[col]
			}
			t.AppendRow(record)
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
