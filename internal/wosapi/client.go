// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wosapi pages search results out of the Web of Science Expanded API.
package wosapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/scoretools/wos-triage/internal/httputil"
	"github.com/scoretools/wos-triage/internal/record"
	"github.com/scoretools/wos-triage/pkg/types"
)

// apiBase is the WoS Expanded API search endpoint. Declared as a var so
// tests can substitute an httptest server.
var apiBase = "https://api.clarivate.com/api/wos"

const (
	defaultPageSize          = 100
	defaultRequestsPerSecond = 4.0
)

// Client is a rate-limited client for the WoS Expanded API.
type Client struct {
	HTTP      *http.Client
	APIKey    string
	UserAgent string

	limiter *rate.Limiter
}

// New builds a Client from the fetch configuration. The API key is passed
// separately because it comes from the environment or the secrets
// directory, never from the config file.
func New(cfg types.FetchConfig, apiKey string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		APIKey:    apiKey,
		UserAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SeedResult is the outcome of the initial count-only query.
type SeedResult struct {
	RecordsFound int
	QueryID      int
}

// queryEnvelope covers the QueryResult header of every search response.
// encoding/json matches field names case-insensitively, which absorbs the
// QueryId/queryId drift seen across API versions.
type queryEnvelope struct {
	QueryResult struct {
		QueryID      flexInt `json:"QueryID"`
		RecordsFound int     `json:"RecordsFound"`
	} `json:"QueryResult"`
}

// flexInt decodes an integer that some API versions quote as a string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parsing integer %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

// Seed issues a count-only query (count=0, summary view) and reports how
// many records match.
func (c *Client) Seed(ctx context.Context, cfg types.FetchConfig) (SeedResult, error) {
	params := c.queryParams(cfg)
	params.Set("count", "0")
	params.Set("firstRecord", "1")
	params.Set("optionView", "SR")

	body, err := c.get(ctx, params)
	if err != nil {
		return SeedResult{}, err
	}

	var env queryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return SeedResult{}, fmt.Errorf("parsing seed response: %w", err)
	}

	return SeedResult{
		RecordsFound: env.QueryResult.RecordsFound,
		QueryID:      int(env.QueryResult.QueryID),
	}, nil
}

// Page fetches one full-record page starting at firstRecord (1-based). It
// returns the decoded response envelope plus the records discovered in it.
func (c *Client) Page(ctx context.Context, cfg types.FetchConfig, firstRecord, count int) (map[string]any, []record.RawRecord, error) {
	params := c.queryParams(cfg)
	params.Set("count", fmt.Sprintf("%d", count))
	params.Set("firstRecord", fmt.Sprintf("%d", firstRecord))
	params.Set("optionView", "FR")
	params.Set("links", "true")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, fmt.Errorf("parsing page response: %w", err)
	}

	return raw, record.DiscoverRecords(raw), nil
}

// PageFunc receives each fetched page: its 1-based page number, the raw
// decoded envelope, and the records discovered in it. Returning an error
// stops the fetch.
type PageFunc func(page int, raw map[string]any, recs []record.RawRecord) error

// FetchAll runs the seed query then pages through all matching records,
// invoking handle once per page. Progress goes to w. MaxRecords caps the
// total; zero means everything the query matched.
func (c *Client) FetchAll(ctx context.Context, cfg types.FetchConfig, handle PageFunc, w io.Writer) (int, error) {
	seed, err := c.Seed(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("seed query: %w", err)
	}

	total := seed.RecordsFound
	if cfg.MaxRecords > 0 && total > cfg.MaxRecords {
		total = cfg.MaxRecords
	}
	fmt.Fprintf(w, "Query matched %d records; fetching %d\n", seed.RecordsFound, total)
	if total == 0 {
		return 0, nil
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	fetched := 0
	for page := 1; fetched < total; page++ {
		count := pageSize
		if remaining := total - fetched; count > remaining {
			count = remaining
		}

		raw, recs, err := c.Page(ctx, cfg, fetched+1, count)
		if err != nil {
			return fetched, fmt.Errorf("page %d: %w", page, err)
		}
		if len(recs) == 0 {
			fmt.Fprintf(w, "Page %d returned no records; stopping\n", page)
			return fetched, nil
		}

		if err := handle(page, raw, recs); err != nil {
			return fetched, err
		}

		fetched += len(recs)
		fmt.Fprintf(w, "Fetched page %d (%d records, %d/%d)\n", page, len(recs), fetched, total)
	}
	return fetched, nil
}

// queryParams returns the parameters shared by every search request.
func (c *Client) queryParams(cfg types.FetchConfig) url.Values {
	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = "WOS"
	}
	return url.Values{
		"databaseId": {databaseID},
		"usrQuery":   {cfg.Query},
	}
}

// get performs a rate-limited, retried GET and returns the response body.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-ApiKey", c.APIKey)
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("WoS API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading WoS API response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("WoS API returned HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
