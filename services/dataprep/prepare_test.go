package dataprep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pdcmap-backend/lib/tabular"

	"github.com/stretchr/testify/require"
)

func donationFixture() tabular.Dataset {
	return tabular.Dataset{
		Columns: []string{"contributor_name", "amount", "contributor_city", "election_year"},
		Rows: []map[string]string{
			{"contributor_name": "alice", "amount": "25.50", "contributor_city": "Seattle", "election_year": "2020"},
			{"contributor_name": "bob", "amount": "300", "contributor_city": "Spokane", "election_year": "2020"},
			{"contributor_name": "carol", "amount": "12", "contributor_city": "Olympia", "election_year": "2020"},
		},
	}
}

func TestPrepareBaselineCopy(t *testing.T) {
	raw := donationFixture()
	dest := filepath.Join(t.TempDir(), "prepared.csv")

	prepared, err := NewPreparer(PrepareRules{}).PrepareAndSave(context.Background(), raw, dest)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, raw, prepared)

	// persisted file parses back to the same dataset
	persisted, err := tabular.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, prepared, persisted)
}

func TestPrepareDoesNotMutateRaw(t *testing.T) {
	raw := donationFixture()
	dest := filepath.Join(t.TempDir(), "prepared.csv")

	_, err := NewPreparer(PrepareRules{
		Rename: map[string]string{"contributor_name": "donor"},
		Keep:   []string{"donor", "amount"},
	}).PrepareAndSave(context.Background(), raw, dest)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, donationFixture(), raw)
}

func TestPrepareRename(t *testing.T) {
	raw := donationFixture()
	dest := filepath.Join(t.TempDir(), "prepared.csv")

	prepared, err := NewPreparer(PrepareRules{
		Rename: map[string]string{
			"contributor_name": "donor",
			"contributor_city": "city",
		},
	}).PrepareAndSave(context.Background(), raw, dest)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{"donor", "amount", "city", "election_year"}, prepared.Columns)
	require.Len(t, prepared.Rows, 3)
	require.Equal(t, "alice", prepared.Rows[0]["donor"])
	require.Equal(t, "Spokane", prepared.Rows[1]["city"])
}

func TestPrepareKeep(t *testing.T) {
	raw := donationFixture()
	dest := filepath.Join(t.TempDir(), "prepared.csv")

	prepared, err := NewPreparer(PrepareRules{
		Keep: []string{"amount", "contributor_city"},
	}).PrepareAndSave(context.Background(), raw, dest)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{"amount", "contributor_city"}, prepared.Columns)
	require.Len(t, prepared.Rows, 3)
	require.Equal(t, map[string]string{"amount": "25.50", "contributor_city": "Seattle"}, prepared.Rows[0])

	persisted, err := tabular.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, prepared, persisted)
}

func TestPrepareUnknownColumn(t *testing.T) {
	raw := donationFixture()
	dir := t.TempDir()

	_, err := NewPreparer(PrepareRules{
		Rename: map[string]string{"no_such_column": "x"},
	}).PrepareAndSave(context.Background(), raw, filepath.Join(dir, "a.csv"))
	require.ErrorIs(t, err, ErrUnknownColumn)

	_, err = NewPreparer(PrepareRules{
		Keep: []string{"amount", "no_such_column"},
	}).PrepareAndSave(context.Background(), raw, filepath.Join(dir, "b.csv"))
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestPrepareDuplicateKeepColumn(t *testing.T) {
	raw := donationFixture()
	dest := filepath.Join(t.TempDir(), "prepared.csv")

	_, err := NewPreparer(PrepareRules{
		Keep: []string{"amount", "contributor_city", "amount"},
	}).PrepareAndSave(context.Background(), raw, dest)
	require.ErrorContains(t, err, "listed twice")

	// validation failed before anything was written
	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr))
}

func TestPrepareMissingDestDir(t *testing.T) {
	raw := donationFixture()
	dest := filepath.Join(t.TempDir(), "missing", "prepared.csv")

	_, err := NewPreparer(PrepareRules{}).PrepareAndSave(context.Background(), raw, dest)
	require.Error(t, err)
}
