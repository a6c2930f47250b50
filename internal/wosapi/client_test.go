// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wosapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/scoretools/wos-triage/internal/record"
	"github.com/scoretools/wos-triage/pkg/types"
)

func testFetchCfg() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "wos-triage-test/0.1",
		},
		Query:             "CU=(Sweden) AND PY=2025",
		PageSize:          2,
		RequestsPerSecond: 1000,
	}
}

func swapAPIBase(t *testing.T, url string) {
	t.Helper()
	old := apiBase
	apiBase = url
	t.Cleanup(func() { apiBase = old })
}

// --- Seed ---

func TestSeedRequestParams(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		fmt.Fprint(w, `{"QueryResult":{"QueryID":7,"RecordsFound":42,"RecordsSearched":90000000}}`)
	}))
	defer ts.Close()
	swapAPIBase(t, ts.URL)

	cfg := testFetchCfg()
	c := New(cfg, "test-key")
	c.HTTP = ts.Client()

	seed, err := c.Seed(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if seed.RecordsFound != 42 {
		t.Errorf("RecordsFound = %d, want 42", seed.RecordsFound)
	}
	if seed.QueryID != 7 {
		t.Errorf("QueryID = %d, want 7", seed.QueryID)
	}

	q := capturedReq.URL.Query()
	if got := q.Get("usrQuery"); got != cfg.Query {
		t.Errorf("usrQuery = %q, want %q", got, cfg.Query)
	}
	if got := q.Get("databaseId"); got != "WOS" {
		t.Errorf("databaseId = %q, want %q", got, "WOS")
	}
	if got := q.Get("count"); got != "0" {
		t.Errorf("count = %q, want %q", got, "0")
	}
	if got := q.Get("optionView"); got != "SR" {
		t.Errorf("optionView = %q, want %q", got, "SR")
	}
	if got := capturedReq.Header.Get("X-ApiKey"); got != "test-key" {
		t.Errorf("X-ApiKey header = %q, want %q", got, "test-key")
	}
}

func TestSeedQuotedQueryID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"QueryResult":{"QueryId":"13","RecordsFound":5}}`)
	}))
	defer ts.Close()
	swapAPIBase(t, ts.URL)

	cfg := testFetchCfg()
	c := New(cfg, "k")
	c.HTTP = ts.Client()

	seed, err := c.Seed(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if seed.QueryID != 13 {
		t.Errorf("QueryID = %d, want 13", seed.QueryID)
	}
	if seed.RecordsFound != 5 {
		t.Errorf("RecordsFound = %d, want 5", seed.RecordsFound)
	}
}

func TestSeedHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Invalid authorization credentials"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()
	swapAPIBase(t, ts.URL)

	cfg := testFetchCfg()
	c := New(cfg, "bad-key")
	c.HTTP = ts.Client()

	if _, err := c.Seed(context.Background(), cfg); err == nil {
		t.Fatal("expected error for HTTP 401")
	}
}

// --- Page ---

func pageBody(uids ...string) string {
	var buf bytes.Buffer
	buf.WriteString(`{"Data":{"Records":{"records":{"REC":[`)
	for i, uid := range uids {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"UID":%q,"static_data":{"summary":{"titles":{"title":[{"type":"item","content":"Paper %s"}]}}}}`, uid, uid)
	}
	buf.WriteString(`]}}},"QueryResult":{"QueryID":1,"RecordsFound":4}}`)
	return buf.String()
}

func TestPageDecodesRecords(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		fmt.Fprint(w, pageBody("WOS:1", "WOS:2"))
	}))
	defer ts.Close()
	swapAPIBase(t, ts.URL)

	cfg := testFetchCfg()
	c := New(cfg, "k")
	c.HTTP = ts.Client()

	raw, recs, err := c.Page(context.Background(), cfg, 3, 2)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if raw == nil {
		t.Fatal("raw envelope is nil")
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if got := record.UniqueID(recs[0]); got != "WOS:1" {
		t.Errorf("first record UID = %q, want %q", got, "WOS:1")
	}

	q := capturedReq.URL.Query()
	if got := q.Get("firstRecord"); got != "3" {
		t.Errorf("firstRecord = %q, want %q", got, "3")
	}
	if got := q.Get("count"); got != "2" {
		t.Errorf("count = %q, want %q", got, "2")
	}
	if got := q.Get("optionView"); got != "FR" {
		t.Errorf("optionView = %q, want %q", got, "FR")
	}
	if got := q.Get("links"); got != "true" {
		t.Errorf("links = %q, want %q", got, "true")
	}
}

// --- FetchAll ---

func TestFetchAllPagesThroughResults(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		q := r.URL.Query()
		if q.Get("count") == "0" {
			fmt.Fprint(w, `{"QueryResult":{"QueryID":1,"RecordsFound":3}}`)
			return
		}
		first, _ := strconv.Atoi(q.Get("firstRecord"))
		count, _ := strconv.Atoi(q.Get("count"))
		var uids []string
		for i := 0; i < count && first+i <= 3; i++ {
			uids = append(uids, fmt.Sprintf("WOS:%d", first+i))
		}
		fmt.Fprint(w, pageBody(uids...))
	}))
	defer ts.Close()
	swapAPIBase(t, ts.URL)

	cfg := testFetchCfg()
	c := New(cfg, "k")
	c.HTTP = ts.Client()

	var pages []int
	var uids []string
	var out bytes.Buffer
	n, err := c.FetchAll(context.Background(), cfg, func(page int, raw map[string]any, recs []record.RawRecord) error {
		pages = append(pages, page)
		for _, r := range recs {
			uids = append(uids, record.UniqueID(r))
		}
		return nil
	}, &out)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if n != 3 {
		t.Errorf("fetched = %d, want 3", n)
	}
	// Seed + two pages (page size 2, then the remaining 1).
	if calls != 3 {
		t.Errorf("server calls = %d, want 3", calls)
	}
	if len(pages) != 2 || pages[0] != 1 || pages[1] != 2 {
		t.Errorf("pages = %v, want [1 2]", pages)
	}
	want := []string{"WOS:1", "WOS:2", "WOS:3"}
	if len(uids) != len(want) {
		t.Fatalf("uids = %v, want %v", uids, want)
	}
	for i := range want {
		if uids[i] != want[i] {
			t.Errorf("uids[%d] = %q, want %q", i, uids[i], want[i])
		}
	}
}

func TestFetchAllRespectsMaxRecords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("count") == "0" {
			fmt.Fprint(w, `{"QueryResult":{"QueryID":1,"RecordsFound":100}}`)
			return
		}
		first, _ := strconv.Atoi(q.Get("firstRecord"))
		count, _ := strconv.Atoi(q.Get("count"))
		var uids []string
		for i := 0; i < count; i++ {
			uids = append(uids, fmt.Sprintf("WOS:%d", first+i))
		}
		fmt.Fprint(w, pageBody(uids...))
	}))
	defer ts.Close()
	swapAPIBase(t, ts.URL)

	cfg := testFetchCfg()
	cfg.MaxRecords = 3
	c := New(cfg, "k")
	c.HTTP = ts.Client()

	var total int
	var out bytes.Buffer
	n, err := c.FetchAll(context.Background(), cfg, func(_ int, _ map[string]any, recs []record.RawRecord) error {
		total += len(recs)
		return nil
	}, &out)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if n != 3 || total != 3 {
		t.Errorf("fetched = %d (handler saw %d), want 3", n, total)
	}
}

func TestFetchAllZeroMatches(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprint(w, `{"QueryResult":{"QueryID":1,"RecordsFound":0}}`)
	}))
	defer ts.Close()
	swapAPIBase(t, ts.URL)

	cfg := testFetchCfg()
	c := New(cfg, "k")
	c.HTTP = ts.Client()

	var out bytes.Buffer
	n, err := c.FetchAll(context.Background(), cfg, func(_ int, _ map[string]any, _ []record.RawRecord) error {
		t.Fatal("handler should not be called for zero matches")
		return nil
	}, &out)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if n != 0 {
		t.Errorf("fetched = %d, want 0", n)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (seed only)", calls)
	}
}
