// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package triage

import (
	"fmt"
	"io"

	"github.com/scoretools/wos-triage/internal/names"
	"github.com/scoretools/wos-triage/internal/terms"
)

// Summary holds the counts reported after a triage run.
type Summary struct {
	TotalRows          int
	IncludeMatches     int
	ExcludedByTerms    int
	ExcludedByCategory int
	Kept               int
	WithAttribution    int
}

// Run annotates the table: empty columns are pruned, every row is classified
// against the term patterns and attributed against the name patterns, and
// the summary counts are written to w. Pattern compilation must have
// happened before; the compiled patterns are read-only inputs here and rows
// are processed independently.
func Run(t *Table, tp terms.Patterns, np names.Patterns, w io.Writer) Summary {
	t.DropEmptyColumns()
	Classify(t, tp)
	Attribute(t, np)

	var s Summary
	s.TotalRows = len(t.Rows)
	for _, row := range t.Rows {
		if row[ColIncludeMatch] == "true" {
			s.IncludeMatches++
		}
		if row[ColExcludeMatch] == "true" {
			s.ExcludedByTerms++
		}
		if row[ColExcludeCategoryMatch] == "true" {
			s.ExcludedByCategory++
		}
		if IsKept(row) {
			s.Kept++
		}
		if HasAttribution(row) {
			s.WithAttribution++
		}
	}

	fmt.Fprintf(w, "Total INCLUDE matches: %d\n", s.IncludeMatches)
	fmt.Fprintf(w, "Excluded due to EXCLUSION terms (main text): %d\n", s.ExcludedByTerms)
	fmt.Fprintf(w, "Excluded due to CATEGORY exclusions: %d\n", s.ExcludedByCategory)
	fmt.Fprintf(w, "FINAL kept: %d\n", s.Kept)
	fmt.Fprintf(w, "Rows with PI funding attribution: %d\n", s.WithAttribution)
	return s
}

// Kept returns the rows that pass include/exclude filtering.
func Kept(t *Table) *Table {
	return t.Filter(IsKept)
}

// Attributed returns the rows crediting at least one known person.
func Attributed(t *Table) *Table {
	return t.Filter(HasAttribution)
}
