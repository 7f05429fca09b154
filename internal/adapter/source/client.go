// Package source fetches emissions and reference tables from HTTP(S) URLs or
// local files and decodes CSV payloads.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
	"github.com/couchcryptid/tri-dashboard/internal/observability"
)

// maxErrorBody bounds how much of an upstream error response is quoted in errors.
const maxErrorBody = 512

// Client opens locators: http(s) URLs are fetched with GET, anything else is
// read as a local file path.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a source client whose remote fetches are bounded by timeout.
func NewClient(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// IsRemote reports whether locator is an http(s) URL.
func IsRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

// Open returns the raw content at locator. Failures are *domain.LoadError
// values of kind transient.
func (c *Client) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if locator == "" {
		return nil, domain.Transient("source", errors.New("empty locator"))
	}
	if IsRemote(locator) {
		return c.get(ctx, locator)
	}

	f, err := os.Open(locator)
	c.observe("file", err, time.Now())
	if err != nil {
		return nil, domain.Transient(locator, fmt.Errorf("open file: %w", err))
	}
	return f, nil
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.Malformed(url, fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("http", err, start)
		return nil, domain.Transient(url, fmt.Errorf("get: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("upstream status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		c.observe("http", err, start)
		return nil, domain.Transient(url, err)
	}

	c.observe("http", nil, start)
	c.logger.Debug("source fetched", "url", url, "duration", time.Since(start))
	return resp.Body, nil
}

// FetchTable opens locator and decodes it as CSV with a header row.
func (c *Client) FetchTable(ctx context.Context, locator string) (domain.RawTable, error) {
	rc, err := c.Open(ctx, locator)
	if err != nil {
		return domain.RawTable{}, err
	}
	defer rc.Close()

	table, err := ReadCSV(rc)
	if err != nil {
		// A body cut off by the client timeout surfaces as a read error.
		if ctx.Err() != nil || isTimeout(err) {
			return domain.RawTable{}, domain.Transient(locator, err)
		}
		return domain.RawTable{}, domain.Malformed(locator, err)
	}
	return table, nil
}

// ReadCSV decodes a CSV stream whose first record is the header. Rows may
// have any number of fields.
func ReadCSV(r io.Reader) (domain.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RawTable{}, errors.New("read csv: empty input")
		}
		return domain.RawTable{}, fmt.Errorf("read csv header: %w", err)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read csv rows: %w", err)
	}
	return domain.RawTable{Header: header, Rows: rows}, nil
}

func (c *Client) observe(scheme string, err error, start time.Time) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.FetchRequests.WithLabelValues(scheme, outcome).Inc()
	c.metrics.FetchDuration.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
