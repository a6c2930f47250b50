// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scoretools/wos-triage/internal/names"
	"github.com/scoretools/wos-triage/internal/terms"
	"github.com/scoretools/wos-triage/internal/triage"
	"github.com/scoretools/wos-triage/pkg/types"
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Filter fetched records and attribute funding to investigators",
	Long: `Triage reads the normalized record table produced by fetch, classifies
each row against the configured include/exclude terms, and scans funding
text for known investigator names. It writes the rows that survive the
term filters, the subset attributed to an investigator, and optionally
the fully annotated table.`,
	RunE: runTriage,
}

func init() {
	triageCmd.Flags().String("records", "data/wos_results.csv", "normalized record table from fetch")
	triageCmd.Flags().String("keywords", "keywords.yaml", "YAML term configuration")
	triageCmd.Flags().String("pi-list", "pi_list.csv", "semicolon-separated CSV of investigator names")
	triageCmd.Flags().String("results", "data/filtered_results.csv", "output file for kept rows")
	triageCmd.Flags().String("pi-checked", "data/pi_names_checked.csv", "output file for investigator-attributed rows")
	triageCmd.Flags().String("annotated", "", "optional output file for the full annotated table")

	rootCmd.AddCommand(triageCmd)
}

func triageConfig(cmd *cobra.Command) types.TriageConfig {
	return types.TriageConfig{
		RecordsFile:   stringSetting(cmd, "records", "triage.records_file"),
		KeywordFile:   stringSetting(cmd, "keywords", "triage.keyword_file"),
		PIListFile:    stringSetting(cmd, "pi-list", "triage.pi_list_file"),
		ResultsFile:   stringSetting(cmd, "results", "triage.results_file"),
		PICheckedFile: stringSetting(cmd, "pi-checked", "triage.pi_checked_file"),
		AnnotatedFile: stringSetting(cmd, "annotated", "triage.annotated_file"),
	}
}

func runTriage(cmd *cobra.Command, args []string) error {
	cfg := triageConfig(cmd)

	table, err := triage.ReadCSV(cfg.RecordsFile)
	if err != nil {
		return err
	}

	termCfg, err := terms.LoadConfig(cfg.KeywordFile)
	if err != nil {
		return err
	}
	tp := terms.Compile(termCfg)

	people, err := names.LoadList(cfg.PIListFile)
	if err != nil {
		return err
	}
	np := names.Compile(people)
	fmt.Fprintf(os.Stdout, "Loaded %d investigator names from %s\n", len(people), cfg.PIListFile)

	triage.Run(table, tp, np, os.Stdout)

	kept := triage.Kept(table)
	if err := kept.WriteCSV(cfg.ResultsFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d kept rows to %s\n", len(kept.Rows), cfg.ResultsFile)

	attributed := triage.Attributed(table)
	if err := attributed.WriteCSV(cfg.PICheckedFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d attributed rows to %s\n", len(attributed.Rows), cfg.PICheckedFile)

	if cfg.AnnotatedFile != "" {
		if err := table.WriteCSV(cfg.AnnotatedFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote annotated table to %s\n", cfg.AnnotatedFile)
	}

	return nil
}
