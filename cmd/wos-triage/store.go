// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scoretools/wos-triage/internal/store"
	"github.com/scoretools/wos-triage/internal/triage"
	"github.com/scoretools/wos-triage/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Persist and query annotated records (ingest, query)",
	Long: `Store manages a local SQLite database of annotated records with FTS5
full-text search. Use subcommands to ingest a triaged table or query the
stored records.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest [table.csv]",
	Short: "Ingest an annotated record table into the results store",
	Long: `Ingest upserts every row of an annotated CSV table into the results
database, keyed by the WoS UT identifier. Re-ingesting a record replaces
its stored row.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	tablePath := "data/annotated_results.csv"
	if len(args) == 1 {
		tablePath = args[0]
	}

	table, err := triage.ReadCSV(tablePath)
	if err != nil {
		return err
	}

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.Ingest(context.Background(), table, os.Stdout); err != nil {
		return err
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [search terms]",
	Short: "Query the results store with full-text search and filters",
	Long: `Query searches stored records using FTS5 full-text search over each
record's searchable text, optionally restricted to kept rows or rows
attributed to a known investigator.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	keptOnly, _ := cmd.Flags().GetBool("kept")
	piOnly, _ := cmd.Flags().GetBool("pi")

	opts := store.QueryOptions{
		Query:    strings.Join(args, " "),
		KeptOnly: keptOnly,
		PIOnly:   piOnly,
	}
	opts.MaxResults, _ = cmd.Flags().GetInt("max-results")

	if opts.Query == "" && !opts.KeptOnly && !opts.PIOnly {
		return fmt.Errorf("query or filter required: provide search terms, --kept, or --pi")
	}

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []store.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-50s  %-6s  %-15s  %-4s  %s\n",
		"UT", "Title", "Year", "Term", "Kept", "PI names")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range results {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		term := r.MatchedTerm
		if len(term) > 15 {
			term = term[:12] + "..."
		}
		kept := "no"
		if r.Kept {
			kept = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-50s  %-6s  %-15s  %-4s  %s\n",
			r.UT, title, r.Year, term, kept, r.PINames)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- shared helpers ---

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	dbDir, _ := cmd.Flags().GetString("db-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return types.StoreConfig{
		DBDir:      dbDir,
		MaxResults: maxResults,
	}
}

func init() {
	for _, c := range []*cobra.Command{storeIngestCmd, storeQueryCmd} {
		c.Flags().String("db-dir", "data/index", "directory containing the results database")
	}
	storeQueryCmd.Flags().Int("max-results", 20, "maximum number of results")
	storeQueryCmd.Flags().Bool("kept", false, "only rows that survived the term filters")
	storeQueryCmd.Flags().Bool("pi", false, "only rows attributed to a known investigator")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeQueryCmd)
	rootCmd.AddCommand(storeCmd)
}
