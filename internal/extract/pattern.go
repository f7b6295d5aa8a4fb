package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/ppiankov/recourse/internal/model"
)

// Confidence levels for pattern matches
const (
	patternConfidence    = 0.92
	shortMatchConfidence = 0.78 // Trimmed value shorter than shortValueLength
	shortValueLength     = 3
)

// fieldRules maps a field id to its ordered, case-insensitive rules. Rule
// order is priority order; the table is process-wide static configuration
// and is never mutated after init.
var fieldRules = map[string][]*regexp.Regexp{
	"primary_diagnosis": {
		regexp.MustCompile(`(?i)primary diagnosis\s*[:=-]\s*(?P<value>[^\n.]+)`),
		regexp.MustCompile(`(?i)diagnosis\s*[:=-]\s*(?P<value>[^\n.]+)`),
	},
	"symptom_duration_weeks": {
		regexp.MustCompile(`(?i)symptom duration\s*\(weeks\)\s*[:=-]\s*(?P<value>\d+)`),
		regexp.MustCompile(`(?i)duration\s*[:=-]\s*(?P<value>\d+)\s*weeks`),
	},
	"neurologic_deficit": {
		regexp.MustCompile(`(?i)neurologic deficit\s*present\s*[:=-]\s*(?P<value>yes|no|unknown)`),
		regexp.MustCompile(`(?i)neurologic deficit\s*[:=-]\s*(?P<value>yes|no|unknown)`),
	},
	"conservative_therapy_weeks": {
		regexp.MustCompile(`(?i)conservative therapy duration\s*\(weeks\)\s*[:=-]\s*(?P<value>\d+)`),
		regexp.MustCompile(`(?i)conservative therapy\s*[:=-]\s*(?P<value>\d+)\s*weeks`),
	},
	"pt_trial_documented": {
		regexp.MustCompile(`(?i)physical therapy trial documented\s*[:=-]\s*(?P<value>yes|no)`),
	},
	"prior_imaging_date": {
		regexp.MustCompile(`(?i)date of prior imaging\s*[:=-]\s*(?P<value>\d{4}-\d{2}-\d{2})`),
		regexp.MustCompile(`(?i)prior imaging date\s*[:=-]\s*(?P<value>\d{4}-\d{2}-\d{2})`),
	},
	"clinical_rationale": {
		regexp.MustCompile(`(?i)clinical rationale\s*[:=-]\s*(?P<value>[^\n]+)`),
		regexp.MustCompile(`(?i)medical necessity\s*[:=-]\s*(?P<value>[^\n]+)`),
	},
}

// PatternExtractor is the deterministic extraction backend: ordered regex
// rules per field, first match wins across ordered documents.
type PatternExtractor struct{}

// NewPatternExtractor creates the deterministic backend
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Name returns the backend name
func (e *PatternExtractor) Name() string {
	return model.BackendPattern
}

// Extract returns exactly one fill per target field, in target-field order.
// An empty document set yields all-missing fills.
func (e *PatternExtractor) Extract(_ context.Context, docs []model.Document, targetFields []string) ([]model.FieldFill, error) {
	fills := make([]model.FieldFill, 0, len(targetFields))
	for _, fieldID := range targetFields {
		fills = append(fills, e.extractField(fieldID, docs))
	}
	return fills, nil
}

// extractField scans documents in the order given and rules in priority
// order. The first rule that matches in the first document with any match
// wins; later documents are never consulted for this field.
func (e *PatternExtractor) extractField(fieldID string, docs []model.Document) model.FieldFill {
	rules := fieldRules[fieldID]

	for _, doc := range docs {
		for _, rule := range rules {
			start, end, ok := valueSpan(rule, doc.Text)
			if !ok {
				continue
			}

			value := strings.TrimSpace(doc.Text[start:end])
			confidence := patternConfidence
			if len(value) < shortValueLength {
				confidence = shortMatchConfidence
			}

			return model.FieldFill{
				FieldID:    fieldID,
				Value:      value,
				Confidence: confidence,
				Status:     NormalizeStatus("autofilled", value, confidence),
				Citations: []model.Citation{
					LocateCitation(doc.ID, doc.Text, start, end, fieldExcerptBefore, fieldExcerptAfter),
				},
			}
		}
	}

	return model.FieldFill{
		FieldID:    fieldID,
		Value:      "",
		Confidence: 0.0,
		Status:     model.FillStatusMissing,
		Citations:  []model.Citation{},
	}
}

// valueSpan returns the span of the rule's "value" capture group in text
func valueSpan(rule *regexp.Regexp, text string) (start, end int, ok bool) {
	idx := rule.SubexpIndex("value")
	if idx < 0 {
		return 0, 0, false
	}

	loc := rule.FindStringSubmatchIndex(text)
	if loc == nil || loc[2*idx] < 0 {
		return 0, 0, false
	}

	return loc[2*idx], loc[2*idx+1], true
}
