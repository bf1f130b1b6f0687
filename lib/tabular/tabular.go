// Package tabular holds the in-memory form of the CSV files the
// pipeline reads and writes. Cells are kept as strings end to end so
// a dataset parsed back from disk is always identical to the one that
// was written.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

type Dataset struct {
	// column names in serialization order
	Columns []string
	// each row maps column name to cell value
	Rows []map[string]string
}

// ParseError reports malformed tabular content.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %s", e.Path, e.Line, e.Err.Error())
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Err.Error())
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (d Dataset) Clone() Dataset {
	columns := make([]string, len(d.Columns))
	copy(columns, d.Columns)

	rows := make([]map[string]string, len(d.Rows))
	for i, row := range d.Rows {
		clone := make(map[string]string, len(row))
		for k, v := range row {
			clone[k] = v
		}
		rows[i] = clone
	}

	return Dataset{Columns: columns, Rows: rows}
}

// ReadFile parses a comma-separated file with a header row into a
// Dataset. The header determines column names and their order.
func ReadFile(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err == io.EOF {
		return Dataset{}, &ParseError{Path: path, Err: errors.New("missing header row")}
	}
	if err != nil {
		return Dataset{}, wrapCsvErr(path, err)
	}

	seen := make(map[string]bool, len(header))
	for _, col := range header {
		if seen[col] {
			return Dataset{}, &ParseError{
				Path: path,
				Line: 1,
				Err:  fmt.Errorf("duplicate column %q", col),
			}
		}
		seen[col] = true
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Dataset{}, wrapCsvErr(path, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		rows = append(rows, row)
	}

	return Dataset{Columns: header, Rows: rows}, nil
}

func wrapCsvErr(path string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Path: path, Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Path: path, Err: err}
}

// WriteFile persists the dataset as a comma-separated file, header row
// first, cells ordered by d.Columns.
func (d Dataset) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)

	err = writer.Write(d.Columns)
	if err != nil {
		file.Close()
		return fmt.Errorf("write %s: header: %w", path, err)
	}
	record := make([]string, len(d.Columns))
	for i, row := range d.Rows {
		for j, col := range d.Columns {
			record[j] = row[col]
		}
		err = writer.Write(record)
		if err != nil {
			file.Close()
			return fmt.Errorf("write %s: row %d: %w", path, i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
