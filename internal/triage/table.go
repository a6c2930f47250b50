// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package triage annotates normalized record tables with term-classification
// and funding-attribution results.
package triage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Table is an ordered-column table of string cells. Rows never hold nil or
// missing values for a declared column: absent cells read as "".
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// AppendRow adds a row. Keys outside the declared columns are ignored.
func (t *Table) AppendRow(row map[string]string) {
	kept := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		kept[c] = row[c]
	}
	t.Rows = append(t.Rows, kept)
}

// AddColumn declares a new column (no-op when it already exists).
func (t *Table) AddColumn(name string) {
	for _, c := range t.Columns {
		if c == name {
			return
		}
	}
	t.Columns = append(t.Columns, name)
}

// DropEmptyColumns removes columns whose every cell is empty.
func (t *Table) DropEmptyColumns() {
	kept := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		empty := true
		for _, row := range t.Rows {
			if strings.TrimSpace(row[c]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
}

// Filter returns a new table sharing this table's columns and the rows for
// which pred is true. Row maps are shared, not copied.
func (t *Table) Filter(pred func(row map[string]string) bool) *Table {
	out := NewTable(t.Columns)
	for _, row := range t.Rows {
		if pred(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// ReadCSV loads a comma-separated table with a header row.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s has no header row", path)
	}

	t := NewTable(records[0])
	for _, rec := range records[1:] {
		row := make(map[string]string, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(rec) {
				row[c] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV writes the table as comma-separated text with a header row.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating table file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			rec[i] = row[c]
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing table %s: %w", path, err)
	}
	return nil
}
