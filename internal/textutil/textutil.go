// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil provides small string helpers shared across the pipeline.
package textutil

import "strings"

// DedupeKeepOrder removes duplicates case-insensitively while preserving
// first-seen order. Entries are trimmed; blank entries are dropped. The
// first-seen casing wins.
func DedupeKeepOrder(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// CollapseWhitespace replaces every run of whitespace with a single space
// and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinNonEmpty joins the non-blank entries with sep, skipping empty strings
// so separators never double up.
func JoinNonEmpty(items []string, sep string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, sep)
}
