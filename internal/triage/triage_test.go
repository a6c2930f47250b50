// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package triage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/scoretools/wos-triage/internal/names"
	"github.com/scoretools/wos-triage/internal/terms"
)

func TestRunEndToEnd(t *testing.T) {
	tp := terms.Compile(terms.Config{
		IncludeTerms:         []string{"SCoRe", "resilience"},
		ExcludeTerms:         []string{"veterinary"},
		ExcludeTermsCategory: []string{"oncology"},
	})
	np := names.Compile(names.FromNames([]string{"Eva Andersson"}))

	tbl := NewTable([]string{
		"UT", "Title", "Abstract", "FundingText", "WoSCategoriesTraditional", "Unused",
	})
	// Kept and attributed.
	tbl.AppendRow(map[string]string{
		"UT":          "WOS:1",
		"Title":       "The SCoRe framework",
		"FundingText": "Grant to Eva Andersson.",
	})
	// Included but excluded by a term in the abstract.
	tbl.AppendRow(map[string]string{
		"UT":       "WOS:2",
		"Abstract": "resilience in veterinary cohorts.",
	})
	// Included but excluded by category.
	tbl.AppendRow(map[string]string{
		"UT":                       "WOS:3",
		"Title":                    "resilience again",
		"WoSCategoriesTraditional": "Oncology",
	})
	// No include match at all; attribution still runs.
	tbl.AppendRow(map[string]string{
		"UT":          "WOS:4",
		"Title":       "Unrelated topic",
		"FundingText": "Supported by Eva Andersson Foundation.",
	})

	var out bytes.Buffer
	s := Run(tbl, tp, np, &out)

	if s.TotalRows != 4 {
		t.Errorf("TotalRows = %d", s.TotalRows)
	}
	if s.IncludeMatches != 3 {
		t.Errorf("IncludeMatches = %d, want 3", s.IncludeMatches)
	}
	if s.ExcludedByTerms != 1 {
		t.Errorf("ExcludedByTerms = %d, want 1", s.ExcludedByTerms)
	}
	if s.ExcludedByCategory != 1 {
		t.Errorf("ExcludedByCategory = %d, want 1", s.ExcludedByCategory)
	}
	if s.Kept != 1 {
		t.Errorf("Kept = %d, want 1", s.Kept)
	}
	if s.WithAttribution != 2 {
		t.Errorf("WithAttribution = %d, want 2", s.WithAttribution)
	}

	kept := Kept(tbl)
	if len(kept.Rows) != 1 || kept.Rows[0]["UT"] != "WOS:1" {
		t.Errorf("Kept rows = %v", kept.Rows)
	}

	attributed := Attributed(tbl)
	if len(attributed.Rows) != 2 {
		t.Fatalf("Attributed rows = %d, want 2", len(attributed.Rows))
	}
	// Attribution is independent of the keep decision.
	if attributed.Rows[1]["UT"] != "WOS:4" {
		t.Errorf("second attributed row = %q", attributed.Rows[1]["UT"])
	}

	// The all-empty column disappears before annotation.
	for _, c := range tbl.Columns {
		if c == "Unused" {
			t.Error("empty column must be dropped")
		}
	}

	if !strings.Contains(out.String(), "FINAL kept: 1") {
		t.Errorf("summary output missing, got %q", out.String())
	}
}

func TestRunEmptyTable(t *testing.T) {
	tbl := NewTable([]string{"UT"})
	s := Run(tbl, terms.Compile(terms.Config{}), names.Compile(nil), &bytes.Buffer{})
	if s.TotalRows != 0 || s.Kept != 0 {
		t.Errorf("summary = %+v, want zeros", s)
	}
}
