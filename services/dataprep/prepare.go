package dataprep

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"pdcmap-backend/lib/tabular"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrUnknownColumn = errors.New("unknown column")

// Preparer normalizes a raw dataset for the mapping front end. With
// zero rules it is a structural copy, raw and prepared then share
// schema and row count exactly.
type Preparer struct {
	rules PrepareRules
}

func NewPreparer(rules PrepareRules) Preparer {
	return Preparer{rules: rules}
}

// PrepareAndSave transforms raw (never mutating it) and persists the
// result at destPath. Rules are validated against the raw schema before
// anything is written, a failed run leaves no partial prepared file.
func (p Preparer) PrepareAndSave(ctx context.Context, raw tabular.Dataset, destPath string) (tabular.Dataset, error) {
	_, span := tracer.Start(ctx, "PrepareAndSave")
	defer span.End()
	span.SetAttributes(
		attribute.String("dest", destPath),
		attribute.Int("rows", len(raw.Rows)),
	)

	prepared := raw.Clone()

	// deterministic rule order no matter how the map iterates
	renameOrder := make([]string, 0, len(p.rules.Rename))
	for old := range p.rules.Rename {
		renameOrder = append(renameOrder, old)
	}
	slices.Sort(renameOrder)

	for _, old := range renameOrder {
		renamed := p.rules.Rename[old]
		idx := slices.Index(prepared.Columns, old)
		if idx < 0 {
			err := fmt.Errorf("rename %q: %w", old, ErrUnknownColumn)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return tabular.Dataset{}, err
		}
		if slices.Contains(prepared.Columns, renamed) {
			err := fmt.Errorf("rename %q: target %q already exists", old, renamed)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return tabular.Dataset{}, err
		}

		prepared.Columns[idx] = renamed
		for _, row := range prepared.Rows {
			row[renamed] = row[old]
			delete(row, old)
		}
	}

	if len(p.rules.Keep) > 0 {
		seen := make(map[string]bool, len(p.rules.Keep))
		for _, col := range p.rules.Keep {
			if !slices.Contains(prepared.Columns, col) {
				err := fmt.Errorf("keep %q: %w", col, ErrUnknownColumn)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return tabular.Dataset{}, err
			}
			// a repeated column would persist a duplicate header that
			// no longer parses as a valid dataset
			if seen[col] {
				err := fmt.Errorf("keep %q: column listed twice", col)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return tabular.Dataset{}, err
			}
			seen[col] = true
		}

		kept := make([]map[string]string, len(prepared.Rows))
		for i, row := range prepared.Rows {
			keptRow := make(map[string]string, len(p.rules.Keep))
			for _, col := range p.rules.Keep {
				keptRow[col] = row[col]
			}
			kept[i] = keptRow
		}
		prepared.Columns = slices.Clone(p.rules.Keep)
		prepared.Rows = kept
	}

	err := prepared.WriteFile(destPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist prepared dataset")
		return tabular.Dataset{}, err
	}

	return prepared, nil
}
