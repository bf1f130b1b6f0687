// Package pdc talks to the Public Disclosure Commission's Socrata-style
// API: query construction, access tokens, and fetching CSV resources
// into the local cache.
package pdc

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"pdcmap-backend/lib/restyutil"
	"pdcmap-backend/lib/tabular"
	"pdcmap-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("pdc")

var appTokenPattern = regexp.MustCompile(`\$\$app_token=[^&]*`)

// RedactToken strips the access-token segment from a query URL so it
// can be safely logged or embedded in an error.
func RedactToken(query string) string {
	return appTokenPattern.ReplaceAllString(query, "$$$$app_token=REDACTED")
}

// StatusError is a non-2xx response from the API. URL carries no token.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

type Client struct {
	Http *resty.Client
}

type ClientOptions struct {
	// if zero, defaults to 60 seconds
	Timeout time.Duration
	// if nil, raw HTTP exchanges are not dumped anywhere
	InstrumentOutput restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 60
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("user-agent", "pdcmap-backend/dataprep")

	telemetry.InstrumentResty(client, "pdc/http")
	restyutil.InstrumentClient(client, opts.InstrumentOutput)

	return &Client{Http: client}
}

// FetchCSV executes the query and caches the CSV response body at
// destPath, then parses the written file back into a Dataset so the
// in-memory form and the cache always agree. Any pre-existing file at
// destPath is removed first, a retried run never sees stale rows.
// One attempt only, retry policy belongs to the caller.
func (c *Client) FetchCSV(ctx context.Context, query string, destPath string) (tabular.Dataset, error) {
	ctx, span := tracer.Start(ctx, "client:FetchCSV")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", RedactToken(query)),
		attribute.String("dest", destPath),
	)

	err := os.Remove(destPath)
	if err != nil && !os.IsNotExist(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to clear stale raw file")
		return tabular.Dataset{}, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return tabular.Dataset{}, fmt.Errorf("GET %s: %w", RedactToken(query), err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		statusErr := &StatusError{
			URL:        RedactToken(query),
			StatusCode: res.StatusCode(),
			Status:     res.Status(),
		}
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, statusErr.Error())
		return tabular.Dataset{}, statusErr
	}

	file, err := os.Create(destPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create raw file")
		return tabular.Dataset{}, err
	}
	_, err = io.Copy(file, body)
	if err != nil {
		file.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stream response body")
		return tabular.Dataset{}, fmt.Errorf("GET %s: %w", RedactToken(query), err)
	}
	err = file.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to close raw file")
		return tabular.Dataset{}, err
	}

	dataset, err := tabular.ReadFile(destPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse raw file")
		return tabular.Dataset{}, err
	}

	span.SetAttributes(attribute.Int("rows", len(dataset.Rows)))
	return dataset, nil
}
