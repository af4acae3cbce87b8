package domain

import "time"

// RankedResult is one scored hit returned by the query engine.
type RankedResult struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// SearchResult is the search use case response: ranked hits plus the domain
// the query was answered from (relevant when the caller let the router pick).
type SearchResult struct {
	Domain  Domain         `json:"domain"`
	Results []RankedResult `json:"results"`
}

// RunReport summarizes one pipeline run over a single domain.
type RunReport struct {
	RunID       string       `json:"run_id"`
	Domain      Domain       `json:"domain"`
	RawRecords  int          `json:"raw_records"`
	Merged      int          `json:"merged"`
	Skipped     int          `json:"skipped"`
	Unresolved  int          `json:"unresolved"`
	DocsIndexed int          `json:"docs_indexed"`
	DocsDropped int          `json:"docs_dropped"`
	Terms       int          `json:"terms"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}
