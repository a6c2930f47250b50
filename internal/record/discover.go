// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import "sort"

// DiscoverRecords locates the record list inside a response envelope.
//
// The envelope shape drifts across API versions, so discovery is two-tier:
// first the known direct path Data.Records.records.REC, then a recursive
// walk collecting every list or singleton stored under a "REC" or "records"
// key. The longest candidate list wins; among the longest, a candidate whose
// entries carry a UID field is preferred. The walk is a best-effort
// heuristic, not a contract — with several equally long UID-bearing
// candidates it returns whichever the walk reached first.
func DiscoverRecords(data any) []RawRecord {
	envelope, ok := data.(map[string]any)
	if !ok {
		return nil
	}

	// Tier 1: the documented path.
	if inner := submap(envelope, "Data", "Records"); inner != nil {
		switch r := inner["records"].(type) {
		case map[string]any:
			if recs := asRecordList(r["REC"]); len(recs) > 0 {
				return recs
			}
		case []any:
			if recs := asRecordList(r); len(recs) > 0 {
				return recs
			}
		}
	}

	// Tier 2: walk the whole structure.
	var candidates [][]RawRecord
	walkForRecords(envelope, 0, &candidates)
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) > len(best) {
			best = c
		}
	}

	withUID := make([]RawRecord, 0, len(best))
	for _, rec := range best {
		if _, ok := rec["UID"]; ok {
			withUID = append(withUID, rec)
			continue
		}
		if _, ok := rec["uid"]; ok {
			withUID = append(withUID, rec)
		}
	}
	if len(withUID) > 0 {
		return withUID
	}
	return best
}

func walkForRecords(v any, depth int, candidates *[][]RawRecord) {
	if depth > maxExtractDepth {
		return
	}
	switch x := v.(type) {
	case map[string]any:
		if recs := asRecordList(x["REC"]); len(recs) > 0 {
			*candidates = append(*candidates, recs)
		}
		if records, ok := x["records"]; ok {
			if recs := asRecordList(records); len(recs) > 0 {
				*candidates = append(*candidates, recs)
			} else if inner, ok := records.(map[string]any); ok {
				if recs := asRecordList(inner["REC"]); len(recs) > 0 {
					*candidates = append(*candidates, recs)
				}
			}
		}
		// Keys sorted so ties between equally long candidates resolve the
		// same way on every run.
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkForRecords(x[k], depth+1, candidates)
		}
	case []any:
		for _, child := range x {
			walkForRecords(child, depth+1, candidates)
		}
	}
}

// asRecordList converts a value to a record list: a single object becomes a
// singleton, a list qualifies only when every entry is an object.
func asRecordList(v any) []RawRecord {
	switch x := v.(type) {
	case map[string]any:
		return []RawRecord{RawRecord(x)}
	case []any:
		if len(x) == 0 {
			return nil
		}
		recs := make([]RawRecord, 0, len(x))
		for _, item := range x {
			m, ok := item.(map[string]any)
			if !ok {
				return nil
			}
			recs = append(recs, RawRecord(m))
		}
		return recs
	default:
		return nil
	}
}
