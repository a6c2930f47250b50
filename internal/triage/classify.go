// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package triage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/scoretools/wos-triage/internal/terms"
	"github.com/scoretools/wos-triage/internal/textutil"
)

// Derived column names added by the engines.
const (
	ColFulltext             = "fulltext"
	ColCategoryText         = "category_text"
	ColIncludeMatch         = "include_match"
	ColExcludeMatch         = "exclude_match"
	ColExcludeCategoryMatch = "exclude_category_match"
	ColMatchedTerm          = "matched_term"
	ColMatchedSentence      = "matched_sentence"
	ColFundingSearchText    = "funding_search_text"
	ColPINamesInFunding     = "pi_names_in_funding"
	ColPIInFunding          = "pi_in_funding"
)

// textColumnHints identify searchable text columns by name substring.
var textColumnHints = []string{"title", "abstract", "fund", "keyword", "ack"}

const categoryColumnHint = "categor"

// sentenceBoundary marks the whitespace run following sentence-terminal
// punctuation. The punctuation stays with the preceding sentence.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// searchColumns partitions the table's columns into text-like and
// category-like sets by case-insensitive substring on the column name.
// A column matching both hints counts as category only.
func searchColumns(columns []string) (textCols, categoryCols []string) {
	for _, c := range columns {
		lower := strings.ToLower(c)
		if strings.Contains(lower, categoryColumnHint) {
			categoryCols = append(categoryCols, c)
			continue
		}
		for _, hint := range textColumnHints {
			if strings.Contains(lower, hint) {
				textCols = append(textCols, c)
				break
			}
		}
	}
	return textCols, categoryCols
}

// joinCells concatenates the named cells of a row with single spaces.
func joinCells(row map[string]string, cols []string) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, row[c])
	}
	return textutil.JoinNonEmpty(parts, " ")
}

// Classify applies the compiled term patterns to every row, adding the
// fulltext/category_text search columns and the include/exclude flags plus
// matched term and sentence. Rows are annotated in place.
func Classify(t *Table, p terms.Patterns) {
	textCols, categoryCols := searchColumns(t.Columns)

	for _, col := range []string{
		ColFulltext, ColCategoryText,
		ColIncludeMatch, ColExcludeMatch, ColExcludeCategoryMatch,
		ColMatchedTerm, ColMatchedSentence,
	} {
		t.AddColumn(col)
	}

	for _, row := range t.Rows {
		fulltext := joinCells(row, textCols)
		categoryText := joinCells(row, categoryCols)
		row[ColFulltext] = fulltext
		row[ColCategoryText] = categoryText

		// The ambiguous branch is checked first so that its match wins when
		// both patterns could apply.
		matched := p.Ambiguous.FindString(fulltext)
		if matched == "" {
			matched = p.Include.FindString(fulltext)
		}
		include := matched != ""

		row[ColIncludeMatch] = strconv.FormatBool(include)
		row[ColExcludeMatch] = strconv.FormatBool(p.Exclude.MatchString(fulltext))
		row[ColExcludeCategoryMatch] = strconv.FormatBool(p.ExcludeCategory.MatchString(categoryText))
		row[ColMatchedTerm] = ""
		row[ColMatchedSentence] = ""
		if include {
			row[ColMatchedTerm] = matched
			row[ColMatchedSentence] = matchedSentence(fulltext, p)
		}
	}
}

// matchedSentence returns the first sentence of text containing an include
// match, or "" when no sentence matches on its own.
func matchedSentence(text string, p terms.Patterns) string {
	for _, s := range splitSentences(text) {
		if p.Ambiguous.MatchString(s) || p.Include.MatchString(s) {
			return s
		}
	}
	return ""
}

// splitSentences splits text on whitespace immediately following `.`, `!`
// or `?`. Sentences are trimmed; empty pieces are dropped.
func splitSentences(text string) []string {
	var out []string
	prev := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// loc[0] is the punctuation mark; keep it with the sentence.
		if s := strings.TrimSpace(text[prev : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		prev = loc[1]
	}
	if s := strings.TrimSpace(text[prev:]); s != "" {
		out = append(out, s)
	}
	return out
}

// IsKept reports the downstream keep rule: included and not excluded by
// either list.
func IsKept(row map[string]string) bool {
	return row[ColIncludeMatch] == "true" &&
		row[ColExcludeMatch] != "true" &&
		row[ColExcludeCategoryMatch] != "true"
}
