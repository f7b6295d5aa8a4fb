package model

// DocumentKind classifies a case document
type DocumentKind string

const (
	DocumentKindEvidence DocumentKind = "evidence"      // Clinical evidence (notes, imaging reports)
	DocumentKindDenial   DocumentKind = "denial_letter" // Payer denial letter
)

// Document is the extraction engine's input unit: plain text with a stable
// id. Documents are borrowed read-only from the case's evidence set.
type Document struct {
	ID   int          `json:"id"`
	Kind DocumentKind `json:"kind,omitempty"`
	Name string       `json:"name,omitempty"` // Source filename
	Text string       `json:"text"`
}
