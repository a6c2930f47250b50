// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textutil

import (
	"reflect"
	"testing"
)

func TestDedupeKeepOrder(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  []string
	}{
		{"empty", nil, []string{}},
		{"no duplicates", []string{"a", "b"}, []string{"a", "b"}},
		{"case-insensitive, first casing wins", []string{"Alpha", "alpha", "Beta"}, []string{"Alpha", "Beta"}},
		{"blank and whitespace dropped", []string{"", "  ", "x"}, []string{"x"}},
		{"trimmed before comparison", []string{" Vetenskapsrådet ", "vetenskapsrådet"}, []string{"Vetenskapsrådet"}},
		{"order preserved", []string{"c", "a", "C", "b", "A"}, []string{"c", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupeKeepOrder(tt.items)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DedupeKeepOrder(%v) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  a  b ", "a b"},
		{"line\nbreaks\tand\ttabs", "line breaks and tabs"},
		{"already clean", "already clean"},
	}
	for _, tt := range tests {
		if got := CollapseWhitespace(tt.in); got != tt.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinNonEmpty(t *testing.T) {
	got := JoinNonEmpty([]string{"a", "", " ", "b"}, "; ")
	if got != "a; b" {
		t.Errorf("JoinNonEmpty = %q, want %q", got, "a; b")
	}
	if got := JoinNonEmpty(nil, "; "); got != "" {
		t.Errorf("JoinNonEmpty(nil) = %q, want empty", got)
	}
}
