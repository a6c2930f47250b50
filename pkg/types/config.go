// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration structs shared across pipeline stages.
package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "wos-triage/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Query is the Web of Science user query (e.g. "CU=(Sweden) AND PY=2025").
	Query string `json:"query" yaml:"query"`

	// DatabaseID selects the WoS database (default "WOS").
	DatabaseID string `json:"database_id" yaml:"database_id"`

	// PageSize is the number of records requested per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxRecords caps the total number of records fetched. Zero means all.
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// RequestsPerSecond throttles page requests (default 4).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// OutDir is the directory for fetch outputs (JSONL dump, CSV table).
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// SaveDebugFirstPage writes the raw first response page to disk for
	// inspecting envelope drift.
	SaveDebugFirstPage bool `json:"save_debug_first_page" yaml:"save_debug_first_page"`
}

// TriageConfig holds settings for the triage stage.
type TriageConfig struct {
	// RecordsFile is the normalized record table produced by fetch.
	RecordsFile string `json:"records_file" yaml:"records_file"`

	// KeywordFile is the YAML term configuration.
	KeywordFile string `json:"keyword_file" yaml:"keyword_file"`

	// PIListFile is the semicolon-separated CSV of investigator names.
	PIListFile string `json:"pi_list_file" yaml:"pi_list_file"`

	// ResultsFile receives rows kept after include/exclude filtering.
	ResultsFile string `json:"results_file" yaml:"results_file"`

	// PICheckedFile receives rows with funding attribution to a known PI.
	PICheckedFile string `json:"pi_checked_file" yaml:"pi_checked_file"`

	// AnnotatedFile optionally receives the full annotated table.
	AnnotatedFile string `json:"annotated_file,omitempty" yaml:"annotated_file,omitempty"`
}

// StoreConfig holds settings for the results store.
type StoreConfig struct {
	// DBDir is the directory containing the SQLite database.
	DBDir string `json:"db_dir" yaml:"db_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
