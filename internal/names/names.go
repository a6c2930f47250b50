// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package names loads the controlled investigator list and compiles it into
// the two-stage matching patterns used for funding attribution.
package names

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/scoretools/wos-triage/internal/textutil"
)

// neverMatch cannot match any input; empty name lists compile to it.
var neverMatch = regexp.MustCompile(`[^\s\S]`)

// Person is one entry of the controlled name list.
type Person struct {
	// Display is the whitespace-normalized full name as configured.
	Display string

	// Last is the final whitespace-delimited token of Display.
	Last string
}

// NewPerson normalizes a display name and derives its last name.
func NewPerson(display string) Person {
	display = textutil.CollapseWhitespace(display)
	parts := strings.Fields(display)
	last := ""
	if len(parts) > 0 {
		last = parts[len(parts)-1]
	}
	return Person{Display: display, Last: last}
}

// LoadList reads the investigator list from a semicolon-separated CSV with a
// required "Name" column. A missing Name column is a hard configuration
// error. Names are deduplicated case-insensitively and ordered longest-first
// so a longer name is never shadowed by a shorter one.
func LoadList(path string) ([]Person, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PI list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing PI list %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("PI list %s is empty", path)
	}

	nameCol := -1
	for i, col := range rows[0] {
		if strings.TrimSpace(col) == "Name" {
			nameCol = i
			break
		}
	}
	if nameCol == -1 {
		return nil, fmt.Errorf("PI list %s must contain a column named %q", path, "Name")
	}

	var raw []string
	for _, row := range rows[1:] {
		if nameCol < len(row) {
			raw = append(raw, row[nameCol])
		}
	}
	return FromNames(raw), nil
}

// FromNames builds the ordered, deduplicated Person list from raw names.
// Whitespace is normalized before deduplication so "Eva  Andersson" and
// "Eva Andersson" collapse to one entry.
func FromNames(raw []string) []Person {
	normalized := make([]string, 0, len(raw))
	for _, n := range raw {
		normalized = append(normalized, textutil.CollapseWhitespace(n))
	}
	deduped := textutil.DedupeKeepOrder(normalized)
	people := make([]Person, 0, len(deduped))
	for _, n := range deduped {
		people = append(people, NewPerson(n))
	}
	// Longest first; SliceStable keeps configuration order within a length.
	sort.SliceStable(people, func(i, j int) bool {
		return len(people[i].Display) > len(people[j].Display)
	})
	return people
}

// Patterns holds the compiled two-stage name patterns.
type Patterns struct {
	// LastName is the cheap pre-filter: a whole-word, case-insensitive
	// alternation over every distinct last name. Text that contains no last
	// name cannot contain any full name, so the expensive full-name pattern
	// is skipped for text failing this filter.
	LastName *regexp.Regexp

	// FullName matches any controlled full name, tolerating runs of spaces
	// or hyphens between name parts.
	FullName *regexp.Regexp
}

// Compile builds the last-name pre-filter and the full-name pattern. Both
// degrade to never-matching patterns for an empty list.
func Compile(people []Person) Patterns {
	if len(people) == 0 {
		return Patterns{LastName: neverMatch, FullName: neverMatch}
	}

	var lastNames []string
	for _, p := range people {
		if p.Last != "" {
			lastNames = append(lastNames, p.Last)
		}
	}
	lastNames = textutil.DedupeKeepOrder(lastNames)
	sort.SliceStable(lastNames, func(i, j int) bool {
		return len(lastNames[i]) > len(lastNames[j])
	})

	lastParts := make([]string, len(lastNames))
	for i, ln := range lastNames {
		lastParts[i] = wholeWord(regexp.QuoteMeta(ln))
	}

	fullParts := make([]string, len(people))
	for i, p := range people {
		fullParts[i] = fullNamePattern(p.Display)
	}

	return Patterns{
		LastName: regexp.MustCompile("(?i)(?:" + strings.Join(lastParts, "|") + ")"),
		FullName: regexp.MustCompile("(?i)(?:" + strings.Join(fullParts, "|") + ")"),
	}
}

// fullNamePattern joins a name's whitespace-delimited parts with a separator
// class accepting one-or-more spaces or hyphens, so "Anna Svensson" matches
// "Anna-Svensson" and "Anna  Svensson" in source text.
func fullNamePattern(display string) string {
	parts := strings.Fields(display)
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = regexp.QuoteMeta(p)
	}
	return wholeWord(strings.Join(escaped, `[\s-]+`))
}

// wholeWord anchors an already-escaped expression so a match is never
// adjacent to a word character: `\b` on word-character edges, `\B` on
// non-word edges (which holds only when the neighbor is also non-word or
// the string edge).
func wholeWord(expr string) string {
	runes := []rune(expr)
	prefix := `\B`
	if isWordRune(runes[0]) {
		prefix = `\b`
	}
	suffix := `\B`
	if isWordRune(runes[len(runes)-1]) {
		suffix = `\b`
	}
	return prefix + expr + suffix
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}
