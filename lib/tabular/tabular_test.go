package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	err := os.WriteFile(path, []byte("id,amount\n1,25.50\n2,100\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}

	ds, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{"id", "amount"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	require.Equal(t, "25.50", ds.Rows[0]["amount"])
	require.Equal(t, "2", ds.Rows[1]["id"])
}

func TestWriteReadRoundTrip(t *testing.T) {
	ds := Dataset{
		Columns: []string{"donor", "amount", "city"},
		Rows: []map[string]string{
			{"donor": "a, inc.", "amount": "5", "city": "Seattle"},
			{"donor": "b", "amount": "10", "city": "Spokane\nWA"},
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	err := ds.WriteFile(path)
	if err != nil {
		t.Fatal(err)
	}

	back, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, ds, back)
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.csv")
	err := os.WriteFile(empty, nil, 0600)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(empty)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)

	ragged := filepath.Join(dir, "ragged.csv")
	err = os.WriteFile(ragged, []byte("a,b\n1,2,3\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(ragged)
	require.ErrorAs(t, err, &parseErr)

	dup := filepath.Join(dir, "dup.csv")
	err = os.WriteFile(dup, []byte("a,a\n1,2\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(dup)
	require.ErrorAs(t, err, &parseErr)
}

func TestWriteFileMissingDir(t *testing.T) {
	ds := Dataset{Columns: []string{"a"}}
	err := ds.WriteFile(filepath.Join(t.TempDir(), "nope", "out.csv"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestClone(t *testing.T) {
	ds := Dataset{
		Columns: []string{"a"},
		Rows:    []map[string]string{{"a": "1"}},
	}
	clone := ds.Clone()
	clone.Rows[0]["a"] = "changed"
	clone.Columns[0] = "b"

	require.Equal(t, "1", ds.Rows[0]["a"])
	require.Equal(t, "a", ds.Columns[0])
}
