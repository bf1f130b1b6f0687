package dataprep

import (
	"pdcmap-backend/lib/pdc"
)

type ApiConfig struct {
	BaseUrl string `yaml:"base_url"`
	// mapping order in the config file is the query serialization order
	Params pdc.QueryParams `yaml:"params"`
}

type PrepareRules struct {
	// old column name -> new column name
	Rename map[string]string `yaml:"rename"`
	// column subset to keep, in output order. empty keeps everything.
	Keep []string `yaml:"keep"`
}

type Config struct {
	// base of the versioned output tree, relative to the repository root
	OutputDirBase string    `yaml:"output_dir_base"`
	Api           ApiConfig `yaml:"api"`
	// filenames inside <version>/data_prep
	RawFilename      string `yaml:"raw_filename"`
	PreparedFilename string `yaml:"prepared_filename"`
	// optional access-token file, relative to the repository root.
	// empty means unauthenticated.
	TokenFile string       `yaml:"token_file"`
	Prepare   PrepareRules `yaml:"prepare"`
	// sqlite file recording completed runs, relative to the repository
	// root. empty disables the manifest.
	ManifestDb string `yaml:"manifest_db"`
}
