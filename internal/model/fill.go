package model

// FillStatus is the canonical tri-state for an extracted field value
type FillStatus string

const (
	FillStatusAutofilled FillStatus = "autofilled" // High-confidence extraction, safe to pre-populate
	FillStatusSuggested  FillStatus = "suggested"  // Needs clinician review before use
	FillStatusMissing    FillStatus = "missing"    // No usable value found
)

// Citation is a located, bounded excerpt of source text supporting a value.
// Start and End index the source document text; Excerpt is a
// whitespace-normalized window around that span. Immutable once created.
type Citation struct {
	DocID   int    `json:"doc_id"`
	Page    int    `json:"page"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Excerpt string `json:"excerpt"`
}

// FieldFill is one extracted value plus provenance for one questionnaire field
type FieldFill struct {
	FieldID    string     `json:"field_id"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"` // 0.0 - 1.0
	Status     FillStatus `json:"status"`
	Citations  []Citation `json:"citations"`
}
