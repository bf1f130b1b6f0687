// Package dataprep runs the versioned acquisition pipeline: resolve the
// output layout for a version, build the API query, cache the raw CSV,
// and normalize it into the prepared dataset the mapping tooling reads.
package dataprep

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"pdcmap-backend/lib/pdc"
	"pdcmap-backend/lib/tabular"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/dataprep")

type Pipeline struct {
	repoRoot string
	config   Config
	client   *pdc.Client
	manifest *ManifestStore
}

type PipelineOptions struct {
	// root everything in the config resolves against
	RepoRoot string
	Config   Config
	Client   *pdc.Client
	// nil disables run recording
	Manifest *ManifestStore
}

func NewPipeline(opts PipelineOptions) Pipeline {
	client := opts.Client
	if client == nil {
		client = pdc.NewClient(pdc.ClientOptions{})
	}
	return Pipeline{
		repoRoot: opts.RepoRoot,
		config:   opts.Config,
		client:   client,
		manifest: opts.Manifest,
	}
}

// Run executes one full pipeline pass for a version id and returns the
// prepared dataset. Stages run strictly in order and the first failure
// aborts the run with the stage's error untouched. Nothing is rolled
// back, whatever a failed run wrote stays on disk for inspection.
func (p Pipeline) Run(ctx context.Context, version string) (tabular.Dataset, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.String("version", version))

	started := time.Now()

	layout, err := ResolveLayout(filepath.Join(p.repoRoot, p.config.OutputDirBase), version)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve output layout")
		return tabular.Dataset{}, err
	}

	var token string
	if p.config.TokenFile != "" {
		token, err = pdc.ReadTokenFile(filepath.Join(p.repoRoot, p.config.TokenFile))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read token file")
			return tabular.Dataset{}, err
		}
	}
	span.SetAttributes(attribute.Bool("authenticated", token != ""))

	query := pdc.BuildQuery(p.config.Api.BaseUrl, p.config.Api.Params, token)
	slog.Info("fetching raw dataset", "url", pdc.RedactToken(query), "version", version)

	rawPath := filepath.Join(layout.DataPrepDir, p.config.RawFilename)
	raw, err := p.client.FetchCSV(ctx, query, rawPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return tabular.Dataset{}, err
	}
	slog.Info("cached raw dataset", "rows", len(raw.Rows), "file", rawPath)

	preparedPath := filepath.Join(layout.DataPrepDir, p.config.PreparedFilename)
	prepared, err := NewPreparer(p.config.Prepare).PrepareAndSave(ctx, raw, preparedPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prepare failed")
		return tabular.Dataset{}, err
	}
	slog.Info("prepared dataset", "rows", len(prepared.Rows), "file", preparedPath)

	if p.manifest != nil {
		err = p.manifest.Record(ctx, RunRecord{
			Version:      version,
			FetchedAt:    started,
			RawFile:      rawPath,
			PreparedFile: preparedPath,
			RawRows:      len(raw.Rows),
			PreparedRows: len(prepared.Rows),
			Duration:     time.Since(started),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to record run")
			return tabular.Dataset{}, err
		}
	}

	return prepared, nil
}
