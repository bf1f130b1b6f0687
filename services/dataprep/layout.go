package dataprep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// VersionedLayout is the directory tree for one pipeline version.
// Separate versions never share files, so reruns under a new version
// id can never clobber a dataset the mapping tooling already consumes.
type VersionedLayout struct {
	OutputDir   string
	DataPrepDir string
	MapDir      string
}

// NewVersionedLayout computes the layout under baseDir/versionId
// without touching the filesystem. Readers of an existing version use
// this directly.
func NewVersionedLayout(baseDir string, versionId string) (VersionedLayout, error) {
	if !validVersionId(versionId) {
		return VersionedLayout{}, fmt.Errorf("version id %q is not a valid path segment", versionId)
	}

	outputDir := filepath.Join(baseDir, versionId)
	return VersionedLayout{
		OutputDir:   outputDir,
		DataPrepDir: filepath.Join(outputDir, "data_prep"),
		MapDir:      filepath.Join(outputDir, "map"),
	}, nil
}

// ResolveLayout computes the layout under baseDir/versionId and creates
// any missing directories. Existing directories and their contents are
// left alone, calling this twice is safe.
func ResolveLayout(baseDir string, versionId string) (VersionedLayout, error) {
	layout, err := NewVersionedLayout(baseDir, versionId)
	if err != nil {
		return VersionedLayout{}, err
	}

	for _, dir := range []string{layout.OutputDir, layout.DataPrepDir, layout.MapDir} {
		err := os.MkdirAll(dir, 0777)
		if err != nil {
			return VersionedLayout{}, err
		}
	}

	return layout, nil
}

func validVersionId(versionId string) bool {
	if versionId == "" || versionId == "." || versionId == ".." {
		return false
	}
	return !strings.ContainsAny(versionId, "/\\")
}
