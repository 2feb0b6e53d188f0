package datahub

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/covid-regional-etl/internal/domain"
)

// ErrUnexpectedStatus is returned when the provider answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("datahub: unexpected status")

const (
	levelColumn   = "administrative_area_level"
	countryColumn = "iso_alpha_3"
	dateColumn    = "date"
)

// Client downloads case data from the COVID-19 Data Hub.
// It implements pipeline.Extractor.
type Client struct {
	baseURL    string
	httpClient *http.Client
	opts       domain.Options
	logger     *slog.Logger
}

// NewClient creates a Data Hub client for one country, level and date range.
func NewClient(baseURL string, timeout time.Duration, opts domain.Options, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		opts:   opts,
		logger: logger,
	}
}

// Fetch downloads the country table and the source-attribution table. Case
// rows are restricted to the configured administrative level and date range.
func (c *Client) Fetch(ctx context.Context) (domain.Dataset, error) {
	dataURL := fmt.Sprintf("%s/country/%s.csv", c.baseURL, url.PathEscape(c.opts.Country))
	data, err := c.fetchTable(ctx, dataURL, c.keepCaseRow)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("fetch case data: %w", err)
	}

	sources, err := c.fetchTable(ctx, c.baseURL+"/src.csv", c.keepSourceRow)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("fetch sources: %w", err)
	}

	c.logger.Info("dataset fetched",
		"country", c.opts.Country,
		"level", c.opts.Level,
		"rows", data.Len(),
		"columns", len(data.Columns),
		"sources", sources.Len(),
	)
	return domain.Dataset{Data: data, Sources: sources}, nil
}

// rowFilter decides whether a row is kept, given the header.
type rowFilter func(header []string, row []string) bool

func (c *Client) fetchTable(ctx context.Context, fullURL string, keep rowFilter) (domain.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Table{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Table{}, fmt.Errorf("request %s: %w", fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Table{}, fmt.Errorf("%w: %s: status %d: %s", ErrUnexpectedStatus, fullURL, resp.StatusCode, body)
	}

	return readTable(resp.Body, keep)
}

// readTable streams a CSV body, keeping the rows accepted by keep.
func readTable(r io.Reader, keep rowFilter) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, nil
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := domain.Table{Columns: header}
	skipped := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("read row %d: %w", len(t.Rows)+skipped+2, err)
		}
		if keep != nil && !keep(header, row) {
			skipped++
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func (c *Client) keepCaseRow(header, row []string) bool {
	if i := indexOf(header, levelColumn); i >= 0 && i < len(row) {
		if lvl, err := strconv.Atoi(strings.TrimSpace(row[i])); err == nil && lvl != c.opts.Level {
			return false
		}
	}
	if i := indexOf(header, dateColumn); i >= 0 && i < len(row) {
		if d, ok := domain.ParseDate(row[i]); ok && !c.opts.InRange(d) {
			return false
		}
	}
	return true
}

func (c *Client) keepSourceRow(header, row []string) bool {
	i := indexOf(header, countryColumn)
	if i < 0 || i >= len(row) {
		return true
	}
	return row[i] == c.opts.Country
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
