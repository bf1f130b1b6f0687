package commands

import (
	"log/slog"
	"path/filepath"
	"time"

	"pdcmap-backend/lib/pdc"
	"pdcmap-backend/lib/restyutil"
	"pdcmap-backend/lib/serviceutil"
	"pdcmap-backend/pkg/migrations"
	"pdcmap-backend/services/dataprep"
	"pdcmap-backend/services/dataprep/db"

	"github.com/spf13/cobra"
)

var debugHttp *bool
var fetchTimeout *int

func init() {
	debugHttp = runCmd.Flags().Bool("debug-http", false, "Dump raw HTTP exchanges to <repo>/.debug/http.")
	fetchTimeout = runCmd.Flags().Int("timeout", 60, "Fetch timeout in seconds.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <version>",
	Short: "Runs the full fetch-and-prepare pipeline for a version id.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		version := args[0]

		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		opts := pdc.ClientOptions{
			Timeout: time.Duration(*fetchTimeout) * time.Second,
		}
		if *debugHttp {
			opts.InstrumentOutput = restyutil.NewFilesystemOutput(
				filepath.Join(*repoRoot, ".debug/http"),
			)
		}
		client := pdc.NewClient(opts)

		var manifest *dataprep.ManifestStore
		if cfg.ManifestDb != "" {
			database, err := migrations.OpenAndMigrateDB(
				db.Schema,
				filepath.Join(*repoRoot, cfg.ManifestDb),
			)
			if err != nil {
				serviceutil.Fatal("failed to open manifest db", err)
			}
			defer database.Close()
			store := dataprep.NewManifestStore(database)
			manifest = &store
		}

		pipeline := dataprep.NewPipeline(dataprep.PipelineOptions{
			RepoRoot: *repoRoot,
			Config:   cfg,
			Client:   client,
			Manifest: manifest,
		})

		t1 := time.Now()
		prepared, err := pipeline.Run(cmd.Context(), version)
		if err != nil {
			serviceutil.Fatal("pipeline failed", err)
		}
		t2 := time.Now()

		slog.Info(
			"pipeline complete",
			"version", version,
			"rows", len(prepared.Rows),
			"seconds", t2.Sub(t1).Seconds(),
		)
	},
}
