// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import "testing"

func TestDiscoverRecordsDirectPath(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{
			"REC list",
			`{"Data": {"Records": {"records": {"REC": [{"UID": "WOS:1"}, {"UID": "WOS:2"}]}}}}`,
			2,
		},
		{
			"REC singleton object",
			`{"Data": {"Records": {"records": {"REC": {"UID": "WOS:1"}}}}}`,
			1,
		},
		{
			"records directly a list",
			`{"Data": {"Records": {"records": [{"UID": "WOS:1"}]}}}`,
			1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := DiscoverRecords(decode(t, tt.src))
			if len(recs) != tt.want {
				t.Fatalf("got %d records, want %d", len(recs), tt.want)
			}
			if UniqueID(recs[0]) != "WOS:1" {
				t.Errorf("first record UID = %q, want WOS:1", UniqueID(recs[0]))
			}
		})
	}
}

func TestDiscoverRecordsFallbackWalk(t *testing.T) {
	// No direct path; two candidate lists buried at different depths. The
	// longest list wins.
	src := `{
		"payload": {
			"old_shape": {"REC": [{"UID": "WOS:A"}]},
			"wrapper": {"deeper": {"records": [{"UID": "WOS:B"}, {"UID": "WOS:C"}]}}
		}
	}`
	recs := DiscoverRecords(decode(t, src))
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if UniqueID(recs[0]) != "WOS:B" {
		t.Errorf("first record UID = %q, want WOS:B", UniqueID(recs[0]))
	}
}

func TestDiscoverRecordsPrefersEntriesWithUID(t *testing.T) {
	// Winning list mixes tagged and untagged entries; untagged are dropped.
	src := `{"outer": {"REC": [{"UID": "WOS:1"}, {"noise": true}, {"uid": "WOS:2"}]}}`
	recs := DiscoverRecords(decode(t, src))
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
}

func TestDiscoverRecordsNothingFound(t *testing.T) {
	for _, src := range []string{`{}`, `{"Data": {"Records": {}}}`, `[1, 2, 3]`, `"scalar"`} {
		if recs := DiscoverRecords(decode(t, src)); len(recs) != 0 {
			t.Errorf("DiscoverRecords(%s) = %v, want none", src, recs)
		}
	}
}

func TestDiscoverRecordsRejectsMixedLists(t *testing.T) {
	// A "REC" list containing non-objects is not a record container.
	src := `{"REC": [{"UID": "WOS:1"}, "stray string"]}`
	if recs := DiscoverRecords(decode(t, src)); len(recs) != 0 {
		t.Errorf("got %v, want none", recs)
	}
}
