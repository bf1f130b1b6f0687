package pdc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pdcmap-backend/lib/tabular"
	"pdcmap-backend/lib/telemetry"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const testCsv = "id,amount\n1,25.50\n2,300\n"

func setupClient(t *testing.T) *Client {
	cleanup := telemetry.SetupForTesting("test:pdc")
	t.Cleanup(cleanup)

	client := NewClient(ClientOptions{Timeout: time.Second * 5})
	httpmock.ActivateNonDefault(client.Http.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestFetchCSV(t *testing.T) {
	client := setupClient(t)
	httpmock.RegisterResponder(
		"GET", "https://example.org/api?year=2020",
		httpmock.NewStringResponder(200, testCsv),
	)

	dest := filepath.Join(t.TempDir(), "raw.csv")
	ds, err := client.FetchCSV(context.Background(), "https://example.org/api?year=2020", dest)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{"id", "amount"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	require.Equal(t, "25.50", ds.Rows[0]["amount"])

	written, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, testCsv, string(written))
}

func TestFetchCSVOverwritesStaleFile(t *testing.T) {
	client := setupClient(t)
	httpmock.RegisterResponder(
		"GET", "https://example.org/api",
		httpmock.NewStringResponder(200, testCsv),
	)

	dest := filepath.Join(t.TempDir(), "raw.csv")
	err := os.WriteFile(dest, []byte("old,columns\nstale,stale\nstale,stale\nstale,stale\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}

	ds, err := client.FetchCSV(context.Background(), "https://example.org/api", dest)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, ds.Rows, 2)

	written, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, testCsv, string(written))
}

func TestFetchCSVRoundTrip(t *testing.T) {
	client := setupClient(t)
	httpmock.RegisterResponder(
		"GET", "https://example.org/api",
		httpmock.NewStringResponder(200, testCsv),
	)

	dest := filepath.Join(t.TempDir(), "raw.csv")
	ds, err := client.FetchCSV(context.Background(), "https://example.org/api", dest)
	if err != nil {
		t.Fatal(err)
	}

	reread, err := tabular.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, ds, reread)
}

func TestFetchCSVNon2xx(t *testing.T) {
	client := setupClient(t)
	httpmock.RegisterResponder(
		"GET", "https://example.org/api?$$app_token=SECRET",
		httpmock.NewStringResponder(403, "forbidden"),
	)

	dest := filepath.Join(t.TempDir(), "raw.csv")
	_, err := client.FetchCSV(context.Background(), "https://example.org/api?$$app_token=SECRET", dest)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 403, statusErr.StatusCode)
	require.NotContains(t, statusErr.Error(), "SECRET")
}

func TestFetchCSVMalformedBody(t *testing.T) {
	client := setupClient(t)
	httpmock.RegisterResponder(
		"GET", "https://example.org/api",
		httpmock.NewStringResponder(200, "a,b\n1,2,3\n"),
	)

	dest := filepath.Join(t.TempDir(), "raw.csv")
	_, err := client.FetchCSV(context.Background(), "https://example.org/api", dest)

	var parseErr *tabular.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestFetchCSVMissingDestDir(t *testing.T) {
	client := setupClient(t)
	httpmock.RegisterResponder(
		"GET", "https://example.org/api",
		httpmock.NewStringResponder(200, testCsv),
	)

	dest := filepath.Join(t.TempDir(), "missing", "raw.csv")
	_, err := client.FetchCSV(context.Background(), "https://example.org/api", dest)
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestReadTokenFile(t *testing.T) {
	dir := t.TempDir()

	token, err := ReadTokenFile(filepath.Join(dir, "absent"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "", token)

	path := filepath.Join(dir, "token")
	err = os.WriteFile(path, []byte("TOK123\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	token, err = ReadTokenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "TOK123", token)
}
