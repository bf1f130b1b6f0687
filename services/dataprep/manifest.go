package dataprep

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// ManifestStore is the catalog of completed pipeline runs. The mapping
// tooling reads it to discover which dataset versions exist.
type ManifestStore struct {
	db *sql.DB
}

func NewManifestStore(database *sql.DB) ManifestStore {
	return ManifestStore{db: database}
}

type RunRecord struct {
	Version      string
	FetchedAt    time.Time
	RawFile      string
	PreparedFile string
	RawRows      int
	PreparedRows int
	Duration     time.Duration
}

func (s ManifestStore) Record(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (version, fetched_at, raw_file, prepared_file, raw_rows, prepared_rows, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Version,
		rec.FetchedAt.Unix(),
		rec.RawFile,
		rec.PreparedFile,
		rec.RawRows,
		rec.PreparedRows,
		rec.Duration.Milliseconds(),
	)
	return err
}

// List returns all recorded runs, most recent first.
func (s ManifestStore) List(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT version, fetched_at, raw_file, prepared_file, raw_rows, prepared_rows, duration_ms
		FROM runs ORDER BY fetched_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var fetchedAt int64
		var durationMs int64
		err := rows.Scan(
			&rec.Version,
			&fetchedAt,
			&rec.RawFile,
			&rec.PreparedFile,
			&rec.RawRows,
			&rec.PreparedRows,
			&durationMs,
		)
		if err != nil {
			return nil, err
		}
		rec.FetchedAt = time.Unix(fetchedAt, 0)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}
