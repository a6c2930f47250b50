// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record normalizes raw Web of Science records into flat rows.
//
// Raw records arrive as arbitrarily nested JSON with no schema guarantee:
// any field may be absent, a scalar, a singleton object, or a list. Every
// extractor in this package degrades to an empty string instead of failing.
package record

import (
	"sort"
	"strconv"
	"strings"
)

// RawRecord is one decoded record as received from the API.
type RawRecord map[string]any

// maxExtractDepth bounds the ExtractText recursion so hand-built cyclic
// values cannot loop forever. JSON-decoded data never gets near it.
const maxExtractDepth = 64

// AsList wraps a value into a slice: nil becomes an empty slice, a slice is
// returned as-is, anything else becomes a singleton. WoS fields flip between
// scalar and list depending on cardinality, so callers always range.
func AsList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	default:
		return []any{x}
	}
}

// ExtractText reduces an arbitrarily shaped value to one whitespace-joined
// string. Objects are unwrapped through known content-bearing keys ("p",
// "content", "value") before falling back to joining all their values;
// fallback keys are visited in sorted order so output is deterministic.
func ExtractText(v any) string {
	return extractText(v, 0)
}

func extractText(v any, depth int) string {
	if depth > maxExtractDepth {
		return ""
	}
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := extractText(item, depth+1); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		if p, ok := x["p"]; ok {
			return extractText(p, depth+1)
		}
		if c, ok := x["content"].(string); ok {
			return strings.TrimSpace(c)
		}
		if val, ok := x["value"].(string); ok {
			return strings.TrimSpace(val)
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := extractText(x[k], depth+1); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// submap walks a chain of nested object keys and returns the map at the end,
// or nil if any link is absent or not an object.
func submap(m map[string]any, keys ...string) map[string]any {
	cur := m
	for _, k := range keys {
		next, ok := cur[k].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}
