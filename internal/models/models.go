// Package models defines the database entity types.
package models

// Project groups searches run against a single target.
type Project struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	TargetDomain string         `json:"target_domain"`
	Status       string         `json:"status"`
	CreatedAt    int64          `json:"created_at"`
	UpdatedAt    int64          `json:"updated_at"`
	Metadata     map[string]any `json:"metadata"`
}

// Search records a dork query that was executed.
type Search struct {
	ID           int64  `json:"id"`
	ProjectID    *int64 `json:"project_id"`
	DorkQuery    string `json:"dork_query"`
	TargetDomain string `json:"target_domain"`
	SearchURL    string `json:"search_url"`
	ExecutedAt   int64  `json:"executed_at"`
	Status       string `json:"status"`
	UserNotes    string `json:"user_notes"`
}

// Result is a single hit returned for a search.
type Result struct {
	ID       int64          `json:"id"`
	SearchID int64          `json:"search_id"`
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Snippet  string         `json:"snippet"`
	FoundAt  int64          `json:"found_at"`
	Verified bool           `json:"verified"`
	Severity string         `json:"severity"`
	Notes    string         `json:"notes"`
	Metadata map[string]any `json:"metadata"`
}

// Finding is a verified vulnerability raised from a result.
type Finding struct {
	ID           int64          `json:"id"`
	ResultID     int64          `json:"result_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Severity     Severity       `json:"severity"`
	CVSSScore    *float64       `json:"cvss_score"`
	Status       FindingStatus  `json:"status"`
	ReportedAt   int64          `json:"reported_at"`
	RemediatedAt *int64         `json:"remediated_at"`
	Metadata     map[string]any `json:"metadata"`
}

// Tag is a label that can be attached to searches.
type Tag struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Color     *string `json:"color"`
	CreatedAt int64   `json:"created_at"`
}

// AnalyticsEvent is an append-only usage event.
type AnalyticsEvent struct {
	ID         int64          `json:"id"`
	EventType  string         `json:"event_type"`
	EventData  map[string]any `json:"event_data"`
	RecordedAt int64          `json:"recorded_at"`
}

// ExportRecord is an audit entry for an export produced by a renderer.
type ExportRecord struct {
	ID          int64  `json:"id"`
	ProjectID   *int64 `json:"project_id"`
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	ExportedAt  int64  `json:"exported_at"`
	RecordCount int    `json:"record_count"`
}
