package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pdcmap-backend/lib/serviceutil"
	"pdcmap-backend/pkg/migrations"
	"pdcmap-backend/services/dataprep"
	"pdcmap-backend/services/dataprep/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Prints the recorded pipeline runs.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if cfg.ManifestDb == "" {
			fmt.Fprintln(os.Stderr, "no manifest_db configured")
			os.Exit(1)
		}

		database, err := migrations.OpenAndMigrateDB(
			db.Schema,
			filepath.Join(*repoRoot, cfg.ManifestDb),
		)
		if err != nil {
			serviceutil.Fatal("failed to open manifest db", err)
		}
		defer database.Close()

		manifest := dataprep.NewManifestStore(database)
		records, err := manifest.List(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list runs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Version", "Fetched", "Raw rows", "Prepared rows", "Duration"})

		for _, rec := range records {
			t.AppendRow(table.Row{
				rec.Version,
				rec.FetchedAt.Format(time.RFC3339),
				rec.RawRows,
				rec.PreparedRows,
				rec.Duration.String(),
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
