package domain

// BatchReceipt acknowledges an ingested raw-record batch: what was accepted,
// what was skipped and why, and which domains were touched (and therefore
// scheduled for a rebuild).
type BatchReceipt struct {
	Accepted    int          `json:"accepted"`
	Skipped     int          `json:"skipped"`
	Domains     []Domain     `json:"domains"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
