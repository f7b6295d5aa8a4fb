package model

// ParsedDenial is the structured record extracted from one denial letter.
// A case keeps exactly one: re-parsing supersedes the previous record.
type ParsedDenial struct {
	Reasons      []string   `json:"reasons"`
	MissingItems []string   `json:"missing_items"` // Deduplicated, sorted alphabetically
	ReferenceID  string     `json:"reference_id,omitempty"`
	DeadlineText string     `json:"deadline_text,omitempty"` // Raw captured substring, never parsed to a date
	Citations    []Citation `json:"citations"`
}

// GapStatus indicates whether a previously-missing item is now covered
type GapStatus string

const (
	GapStatusResolved GapStatus = "resolved"
	GapStatusMissing  GapStatus = "missing"
)

// GapReportItem reconciles one missing item against current context text.
// Derived on demand, never persisted.
type GapReportItem struct {
	Item   string    `json:"item"`
	Status GapStatus `json:"status"`
}
