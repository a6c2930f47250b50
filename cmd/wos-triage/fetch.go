// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scoretools/wos-triage/internal/record"
	"github.com/scoretools/wos-triage/internal/triage"
	"github.com/scoretools/wos-triage/internal/wosapi"
	"github.com/scoretools/wos-triage/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "wos-triage/0.1"

	recordsDumpFile  = "records_full.jsonl"
	debugPageFile    = "debug_first_page.json"
	recordsTableFile = "wos_results.csv"
)

// dumpLine is one entry in the records_full.jsonl dump.
type dumpLine struct {
	UT     string           `json:"ut"`
	Record record.RawRecord `json:"record"`
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Page Web of Science search results into a record table",
	Long: `Fetch runs a Web of Science Expanded API query, pages through all
matching records, and writes three outputs to the output directory: a JSONL
dump of the raw records, a normalized CSV table, and optionally the raw
first response page for debugging envelope drift.

The API key comes from the WOS_API_KEY environment variable (a .env file
is honored) or from .secrets/wos-api-key.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("query", "", "WoS user query (e.g. 'CU=(Sweden) AND PY=2025')")
	fetchCmd.Flags().String("database", "WOS", "WoS database identifier")
	fetchCmd.Flags().Int("page-size", 100, "records per API page")
	fetchCmd.Flags().Int("max-records", 0, "cap on total records fetched (0 = all)")
	fetchCmd.Flags().Float64("rps", 4, "API requests per second")
	fetchCmd.Flags().String("out-dir", "data", "output directory")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Bool("debug-first-page", false, "save the raw first response page")

	rootCmd.AddCommand(fetchCmd)
}

func fetchConfig(cmd *cobra.Command) types.FetchConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	pageSize, _ := cmd.Flags().GetInt("page-size")
	maxRecords, _ := cmd.Flags().GetInt("max-records")
	rps, _ := cmd.Flags().GetFloat64("rps")
	debugPage, _ := cmd.Flags().GetBool("debug-first-page")

	if !cmd.Flags().Changed("max-records") && viper.IsSet("fetch.max_records") {
		maxRecords = viper.GetInt("fetch.max_records")
	}

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Query:              stringSetting(cmd, "query", "fetch.query"),
		DatabaseID:         stringSetting(cmd, "database", "fetch.database_id"),
		PageSize:           pageSize,
		MaxRecords:         maxRecords,
		RequestsPerSecond:  rps,
		OutDir:             stringSetting(cmd, "out-dir", "fetch.out_dir"),
		SaveDebugFirstPage: debugPage,
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := fetchConfig(cmd)
	if cfg.Query == "" {
		return fmt.Errorf("query required: provide --query or set fetch.query in the config file")
	}

	key := apiKey()
	if key == "" {
		return fmt.Errorf("no API key: set WOS_API_KEY or create .secrets/wos-api-key")
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	dump, err := os.Create(filepath.Join(cfg.OutDir, recordsDumpFile))
	if err != nil {
		return fmt.Errorf("creating records dump: %w", err)
	}
	defer dump.Close()
	enc := json.NewEncoder(dump)

	table := triage.NewTable(record.Columns())

	client := wosapi.New(cfg, key)
	n, err := client.FetchAll(context.Background(), cfg, func(page int, raw map[string]any, recs []record.RawRecord) error {
		if page == 1 && cfg.SaveDebugFirstPage {
			if err := writeDebugPage(cfg.OutDir, raw); err != nil {
				return err
			}
		}
		for _, rec := range recs {
			line := dumpLine{UT: record.UniqueID(rec), Record: rec}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("writing records dump: %w", err)
			}
			row := record.Normalize(rec)
			table.AppendRow(rowMap(row))
		}
		return nil
	}, os.Stdout)
	if err != nil {
		return err
	}

	tablePath := filepath.Join(cfg.OutDir, recordsTableFile)
	if err := table.WriteCSV(tablePath); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d records to %s\n", n, tablePath)
	return nil
}

func writeDebugPage(outDir string, raw map[string]any) error {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding debug page: %w", err)
	}
	path := filepath.Join(outDir, debugPageFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing debug page: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Saved raw first page to %s\n", path)
	return nil
}

// rowMap zips a normalized record into a column-name-keyed row.
func rowMap(row record.Row) map[string]string {
	cols := record.Columns()
	vals := row.Values()
	m := make(map[string]string, len(cols))
	for i, c := range cols {
		m[c] = vals[i]
	}
	return m
}
