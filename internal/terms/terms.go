// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package terms compiles configured vocabulary terms into match patterns.
//
// Include terms are matched as whole words; one designated ambiguous term
// (an acronym colliding with a common English word) is matched
// case-sensitively and tracked independently of the rest. Exclude terms are
// deliberately broader: bare case-insensitive substring containment, biasing
// toward over-exclusion.
package terms

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/scoretools/wos-triage/internal/textutil"
)

// DefaultAmbiguousTerm is the acronym known to collide with an English word.
const DefaultAmbiguousTerm = "SCoRe"

// neverMatch is a pattern that cannot match any input. Empty term sets
// compile to it so downstream boolean logic stays uniform.
var neverMatch = regexp.MustCompile(`[^\s\S]`)

// Config is the keyword configuration loaded from YAML. Absent keys default
// to empty lists, which compile to never-matching patterns.
type Config struct {
	IncludeTerms         []string `yaml:"include_terms"`
	ExcludeTerms         []string `yaml:"exclude_terms"`
	ExcludeTermsCategory []string `yaml:"exclude_terms_category"`

	// AmbiguousTerm overrides the designated case-sensitive term. Empty
	// means DefaultAmbiguousTerm.
	AmbiguousTerm string `yaml:"ambiguous_term,omitempty"`
}

// LoadConfig reads a keyword configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading keyword file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing keyword file %s: %w", path, err)
	}
	return cfg, nil
}

// Patterns holds the four compiled term patterns. All are immutable after
// compilation and safe for concurrent use.
type Patterns struct {
	// Ambiguous matches the designated term case-sensitively, whole-word.
	Ambiguous *regexp.Regexp

	// Include matches the remaining include terms case-insensitively,
	// whole-word.
	Include *regexp.Regexp

	// Exclude matches exclude terms as case-insensitive substrings.
	Exclude *regexp.Regexp

	// ExcludeCategory matches category-exclude terms as case-insensitive
	// substrings.
	ExcludeCategory *regexp.Regexp
}

// Compile turns a term configuration into patterns. Every term is escaped
// and matched literally, so configuration can never produce a pattern
// compilation failure.
func Compile(cfg Config) Patterns {
	ambiguous := cfg.AmbiguousTerm
	if ambiguous == "" {
		ambiguous = DefaultAmbiguousTerm
	}

	// The ambiguous term is pulled out of the case-insensitive alternation
	// whatever its configured casing; it only ever matches exactly.
	var normal []string
	ambiguousConfigured := false
	for _, t := range cfg.IncludeTerms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if strings.EqualFold(t, ambiguous) {
			ambiguousConfigured = true
			continue
		}
		normal = append(normal, t)
	}

	p := Patterns{
		Ambiguous:       neverMatch,
		Include:         compileWordAlternation(normal),
		Exclude:         compileSubstringAlternation(cfg.ExcludeTerms),
		ExcludeCategory: compileSubstringAlternation(cfg.ExcludeTermsCategory),
	}
	if ambiguousConfigured {
		p.Ambiguous = regexp.MustCompile(wholeWord(ambiguous))
	}
	return p
}

// wholeWord wraps an escaped literal with boundary anchors so a match is
// never adjacent to a word character. A word-character edge takes `\b`;
// a non-word edge takes `\B`, which holds exactly when the neighboring
// character is also non-word or the string edge.
func wholeWord(term string) string {
	var b strings.Builder
	runes := []rune(term)
	b.WriteString(edgeAnchor(runes[0]))
	b.WriteString(regexp.QuoteMeta(term))
	b.WriteString(edgeAnchor(runes[len(runes)-1]))
	return b.String()
}

func edgeAnchor(r rune) string {
	if isWordRune(r) {
		return `\b`
	}
	return `\B`
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

// compileWordAlternation builds one case-insensitive whole-word alternation
// over the terms. Alternation order follows configuration order; for
// disjoint boundary-anchored literals order does not affect which texts
// match.
func compileWordAlternation(terms []string) *regexp.Regexp {
	terms = textutil.DedupeKeepOrder(terms)
	if len(terms) == 0 {
		return neverMatch
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = wholeWord(t)
	}
	return regexp.MustCompile("(?i)(?:" + strings.Join(parts, "|") + ")")
}

// compileSubstringAlternation builds one case-insensitive substring
// alternation with no boundary anchoring.
func compileSubstringAlternation(terms []string) *regexp.Regexp {
	terms = textutil.DedupeKeepOrder(terms)
	if len(terms) == 0 {
		return neverMatch
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile("(?i)(?:" + strings.Join(parts, "|") + ")")
}
