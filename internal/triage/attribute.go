// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package triage

import (
	"strconv"
	"strings"

	"github.com/scoretools/wos-triage/internal/names"
	"github.com/scoretools/wos-triage/internal/textutil"
)

// fundingColumnCandidates is the fixed, ordered list of columns searched for
// funding acknowledgements. Whichever subset is present contributes; absent
// columns are not an error.
var fundingColumnCandidates = []string{"FundingText", "FundingAgencies", "GrantNumbers"}

// Attribute applies the two-stage name matching to every row's funding text.
//
// Stage 1 tests the cheap last-name pre-filter; rows failing it
// short-circuit with no attribution. Stage 2 runs the full-name pattern only
// on rows passing stage 1, which prunes the dominant cost: the full-name
// alternation carries one multi-token branch per investigator. The last-name
// set is a superset of tokens in any full name, so stage 1 never causes a
// false negative.
func Attribute(t *Table, p names.Patterns) {
	var fundCols []string
	for _, c := range fundingColumnCandidates {
		for _, have := range t.Columns {
			if have == c {
				fundCols = append(fundCols, c)
				break
			}
		}
	}

	for _, col := range []string{ColFundingSearchText, ColPINamesInFunding, ColPIInFunding} {
		t.AddColumn(col)
	}

	for _, row := range t.Rows {
		searchText := joinCells(row, fundCols)
		row[ColFundingSearchText] = searchText
		row[ColPINamesInFunding] = ""
		row[ColPIInFunding] = "false"

		if !p.LastName.MatchString(searchText) {
			continue
		}

		hits := p.FullName.FindAllString(searchText, -1)
		joined := strings.Join(textutil.DedupeKeepOrder(hits), "; ")
		row[ColPINamesInFunding] = joined
		row[ColPIInFunding] = strconv.FormatBool(joined != "")
	}
}

// HasAttribution reports whether a row credits at least one known person.
func HasAttribution(row map[string]string) bool {
	return row[ColPIInFunding] == "true"
}
