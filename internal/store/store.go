// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists triaged records in SQLite and builds a
// full-text retrieval index over their searchable text.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scoretools/wos-triage/internal/triage"
	"github.com/scoretools/wos-triage/pkg/types"
)

const dbFile = "triage.db"

// columnMap pairs table column names with their database columns. Table
// columns absent from an ingested table store as empty strings.
var columnMap = []struct {
	table string
	db    string
}{
	{"Title", "title"},
	{"Journal", "journal"},
	{"Year", "year"},
	{"DOI", "doi"},
	{"Authors", "authors"},
	{"AuthorEmails", "author_emails"},
	{"Abstract", "abstract"},
	{"FundingText", "funding_text"},
	{"FundingAgencies", "funding_agencies"},
	{"GrantNumbers", "grant_numbers"},
	{"AuthorKeywords", "author_keywords"},
	{"KeywordsPlus", "keywords_plus"},
	{"WoSCategoriesTraditional", "wos_categories_traditional"},
	{"WoSCategoriesExtended", "wos_categories_extended"},
	{triage.ColFulltext, "fulltext"},
	{triage.ColIncludeMatch, "include_match"},
	{triage.ColExcludeMatch, "exclude_match"},
	{triage.ColExcludeCategoryMatch, "exclude_category_match"},
	{triage.ColMatchedTerm, "matched_term"},
	{triage.ColMatchedSentence, "matched_sentence"},
	{triage.ColPINamesInFunding, "pi_names_in_funding"},
	{triage.ColPIInFunding, "pi_in_funding"},
}

// Store manages the triage results SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the results database at cfg.DBDir/triage.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DBDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DBDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	var cols strings.Builder
	for _, m := range columnMap {
		fmt.Fprintf(&cols, ",\n\t\t\t%s TEXT", m.db)
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			ut TEXT NOT NULL UNIQUE%s
		)`, cols.String()),
		`CREATE INDEX IF NOT EXISTS idx_records_include ON records(include_match)`,
		`CREATE INDEX IF NOT EXISTS idx_records_pi ON records(pi_in_funding)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(fulltext, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, fulltext) VALUES (new.rowid, new.fulltext);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, fulltext) VALUES('delete', old.rowid, old.fulltext);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, fulltext) VALUES('delete', old.rowid, old.fulltext);
				INSERT INTO records_fts(rowid, fulltext) VALUES (new.rowid, new.fulltext);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a store ingest run.
type IngestSummary struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Total returns the number of rows processed.
func (s IngestSummary) Total() int {
	return s.Inserted + s.Updated + s.Skipped
}

// Ingest upserts every row of an annotated table keyed by UT. Rows
// without a UT are skipped with a note on w. Re-ingesting a UT replaces
// its stored row (last write wins).
func (s *Store) Ingest(ctx context.Context, t *triage.Table, w io.Writer) (IngestSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		dbCols  []string
		sets    []string
		holders []string
	)
	for _, m := range columnMap {
		dbCols = append(dbCols, m.db)
		sets = append(sets, fmt.Sprintf("%s=excluded.%s", m.db, m.db))
		holders = append(holders, "?")
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO records (ut, %s) VALUES (?, %s)
		 ON CONFLICT(ut) DO UPDATE SET %s`,
		strings.Join(dbCols, ", "), strings.Join(holders, ", "), strings.Join(sets, ", ")))
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	var summary IngestSummary
	for i, row := range t.Rows {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		ut := strings.TrimSpace(row["UT"])
		if ut == "" {
			fmt.Fprintf(w, "skipped row %d: no UT\n", i+1)
			summary.Skipped++
			continue
		}

		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM records WHERE ut = ?`, ut,
		).Scan(&exists); err != nil {
			return summary, fmt.Errorf("checking record %s: %w", ut, err)
		}

		args := make([]any, 0, len(columnMap)+1)
		args = append(args, ut)
		for _, m := range columnMap {
			args = append(args, row[m.table])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return summary, fmt.Errorf("upserting record %s: %w", ut, err)
		}

		if exists > 0 {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing ingest: %w", err)
	}

	fmt.Fprintf(w, "inserted: %d, updated: %d, skipped: %d\n",
		summary.Inserted, summary.Updated, summary.Skipped)
	return summary, nil
}

// QueryOptions holds parameters for results store queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over record fulltext.
	Query string

	// KeptOnly restricts results to rows that survived the term filters.
	KeptOnly bool

	// PIOnly restricts results to rows attributed to a known investigator.
	PIOnly bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Result is one stored record returned by Query.
type Result struct {
	UT              string
	Title           string
	Journal         string
	Year            string
	DOI             string
	MatchedTerm     string
	MatchedSentence string
	PINames         string
	Kept            bool
	PIInFunding     bool
}

// Query searches stored records. Full-text queries rank by FTS5
// relevance; filter-only queries sort by UT.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	const selectCols = `r.ut, r.title, r.journal, r.year, r.doi,
			r.matched_term, r.matched_sentence, r.pi_names_in_funding,
			r.include_match, r.exclude_match, r.exclude_category_match, r.pi_in_funding`

	if useFTS {
		qb.WriteString(`SELECT ` + selectCols + `
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			WHERE records_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + selectCols + `
			FROM records r
			WHERE 1=1`)
	}

	if opts.KeptOnly {
		qb.WriteString(` AND r.include_match = 'true' AND r.exclude_match <> 'true' AND r.exclude_category_match <> 'true'`)
	}
	if opts.PIOnly {
		qb.WriteString(` AND r.pi_in_funding = 'true'`)
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.ut`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying results store: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r                      Result
			include, excl, exclCat string
			pi                     string
		)
		if err := rows.Scan(
			&r.UT, &r.Title, &r.Journal, &r.Year, &r.DOI,
			&r.MatchedTerm, &r.MatchedSentence, &r.PINames,
			&include, &excl, &exclCat, &pi,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Kept = include == "true" && excl != "true" && exclCat != "true"
		r.PIInFunding = pi == "true"
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}
