package model

import "time"

// Tier identifies which extraction tier produced a finding.
// Deterministic findings always outrank AI findings: the accumulator
// never lets tier 2 overwrite a tier 1 value.
const (
	TierDeterministic = 1
	TierAI            = 2
)

// Finding is one candidate value for one profile field, produced by an
// extractor from a single page. Findings are additive hints; the
// accumulator decides whether they land in the profile.
type Finding struct {
	Field     string `json:"field"`
	Value     any    `json:"value"`
	SourceURL string `json:"source_url"`
	Tier      int    `json:"tier"`

	// Canonical marks page-role-authoritative findings (e.g. KvK from a
	// privacy page). A canonical finding may replace a non-canonical
	// scalar once; the replacement is logged.
	Canonical bool `json:"canonical,omitempty"`
}

// RunStatus is the lifecycle state of one agency scrape run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusDiscovering RunStatus = "discovering"
	RunStatusScraping    RunStatus = "scraping"
	RunStatusFinalizing  RunStatus = "finalizing"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Run records one scrape run for one agency.
type Run struct {
	ID           string    `json:"id"`
	AgencyKey    string    `json:"agency_key"`
	Status       RunStatus `json:"status"`
	PagesVisited int       `json:"pages_visited"`
	FieldsFound  int       `json:"fields_found"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
