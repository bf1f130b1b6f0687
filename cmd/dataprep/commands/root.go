package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pdcmap-backend/lib/configutil"
	"pdcmap-backend/lib/telemetry"
	"pdcmap-backend/services/dataprep"

	"github.com/spf13/cobra"
)

var repoRoot *string
var configName *string
var debug *bool

var rootCmd = &cobra.Command{
	Use:   "dataprep",
	Short: "dataprep fetches PDC donation records and prepares versioned datasets for mapping.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if *debug {
			telemetry.InitSlog(true)
		}
	},
}

func init() {
	repoRoot = rootCmd.PersistentFlags().String("repo", ".", "The repository root that output paths resolve against.")
	configName = rootCmd.PersistentFlags().String("config", "dataprep.yaml", "The pipeline config file, relative to the repository root.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging.")
}

func readConfig() (dataprep.Config, error) {
	path := *configName
	if !filepath.IsAbs(path) {
		path = filepath.Join(*repoRoot, path)
	}
	return configutil.ReadConfig[dataprep.Config](path)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
