package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/ppiankov/recourse/internal/model"
)

func TestPatternExtractor_Extract(t *testing.T) {
	extractor := NewPatternExtractor()

	docs := []model.Document{
		{
			ID:   7,
			Kind: model.DocumentKindEvidence,
			Name: "note.txt",
			Text: "Primary Diagnosis: Lumbar radiculopathy. Symptom Duration (weeks): 12",
		},
	}

	fills, err := extractor.Extract(context.Background(), docs,
		[]string{"primary_diagnosis", "symptom_duration_weeks", "prior_imaging_date"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(fills) != 3 {
		t.Fatalf("expected 3 fills, got %d", len(fills))
	}

	diagnosis := fills[0]
	if diagnosis.FieldID != "primary_diagnosis" {
		t.Errorf("expected primary_diagnosis first, got %s", diagnosis.FieldID)
	}
	if diagnosis.Value != "Lumbar radiculopathy" {
		t.Errorf("expected 'Lumbar radiculopathy', got %q", diagnosis.Value)
	}
	if diagnosis.Confidence != 0.92 {
		t.Errorf("expected confidence 0.92, got %v", diagnosis.Confidence)
	}
	if diagnosis.Status != model.FillStatusAutofilled {
		t.Errorf("expected autofilled, got %s", diagnosis.Status)
	}
	if len(diagnosis.Citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(diagnosis.Citations))
	}
	if diagnosis.Citations[0].DocID != 7 {
		t.Errorf("expected doc id 7, got %d", diagnosis.Citations[0].DocID)
	}
	span := docs[0].Text[diagnosis.Citations[0].Start:diagnosis.Citations[0].End]
	if span != "Lumbar radiculopathy" {
		t.Errorf("citation span does not cover the value: %q", span)
	}

	duration := fills[1]
	if duration.Value != "12" {
		t.Errorf("expected '12', got %q", duration.Value)
	}
	if duration.Confidence != 0.78 {
		t.Errorf("expected demoted confidence 0.78 for short value, got %v", duration.Confidence)
	}
	if duration.Status != model.FillStatusSuggested {
		t.Errorf("expected suggested below confidence floor, got %s", duration.Status)
	}

	missing := fills[2]
	if missing.Status != model.FillStatusMissing {
		t.Errorf("expected missing, got %s", missing.Status)
	}
	if missing.Value != "" || missing.Confidence != 0 {
		t.Errorf("missing fill should have empty value and zero confidence")
	}
	if missing.Citations == nil || len(missing.Citations) != 0 {
		t.Errorf("missing fill should have an empty citation list")
	}
}

func TestPatternExtractor_FirstDocumentWins(t *testing.T) {
	extractor := NewPatternExtractor()

	// The first document only matches the lower-priority rule, but document
	// order takes precedence over rule priority across documents.
	docs := []model.Document{
		{ID: 1, Text: "Diagnosis: Spinal stenosis"},
		{ID: 2, Text: "Primary Diagnosis: Lumbar radiculopathy"},
	}

	fills, err := extractor.Extract(context.Background(), docs, []string{"primary_diagnosis"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fills[0].Value != "Spinal stenosis" {
		t.Errorf("expected first document's value, got %q", fills[0].Value)
	}
	if fills[0].Citations[0].DocID != 1 {
		t.Errorf("expected citation into doc 1, got %d", fills[0].Citations[0].DocID)
	}
}

func TestPatternExtractor_RulePriority(t *testing.T) {
	extractor := NewPatternExtractor()

	// Within one document the higher-priority rule wins even when the
	// lower-priority rule matches earlier in the text.
	docs := []model.Document{
		{ID: 1, Text: "Diagnosis: wrong pick\nPrimary Diagnosis: Lumbar radiculopathy"},
	}

	fills, err := extractor.Extract(context.Background(), docs, []string{"primary_diagnosis"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fills[0].Value != "Lumbar radiculopathy" {
		t.Errorf("expected primary diagnosis rule to win, got %q", fills[0].Value)
	}
}

func TestPatternExtractor_EmptyDocuments(t *testing.T) {
	extractor := NewPatternExtractor()

	fills, err := extractor.Extract(context.Background(), nil,
		[]string{"primary_diagnosis", "clinical_rationale"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(fills) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(fills))
	}
	for _, fill := range fills {
		if fill.Status != model.FillStatusMissing {
			t.Errorf("field %s: expected missing, got %s", fill.FieldID, fill.Status)
		}
	}
}

func TestPatternExtractor_AllFields(t *testing.T) {
	extractor := NewPatternExtractor()

	text := strings.Join([]string{
		"Primary Diagnosis: Lumbar radiculopathy",
		"Symptom Duration (weeks): 12",
		"Neurologic deficit present: yes",
		"Conservative therapy duration (weeks): 8",
		"Physical therapy trial documented: yes",
		"Date of prior imaging: 2025-11-02",
		"Clinical rationale: Persistent radicular pain despite therapy",
	}, "\n")

	target := []string{
		"primary_diagnosis", "symptom_duration_weeks", "neurologic_deficit",
		"conservative_therapy_weeks", "pt_trial_documented", "prior_imaging_date",
		"clinical_rationale",
	}

	fills, err := extractor.Extract(context.Background(),
		[]model.Document{{ID: 1, Text: text}}, target)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := map[string]string{
		"primary_diagnosis":          "Lumbar radiculopathy",
		"symptom_duration_weeks":     "12",
		"neurologic_deficit":         "yes",
		"conservative_therapy_weeks": "8",
		"pt_trial_documented":        "yes",
		"prior_imaging_date":         "2025-11-02",
		"clinical_rationale":         "Persistent radicular pain despite therapy",
	}

	for i, fill := range fills {
		if fill.FieldID != target[i] {
			t.Errorf("fill %d: expected field %s, got %s", i, target[i], fill.FieldID)
		}
		if fill.Value != want[fill.FieldID] {
			t.Errorf("field %s: expected %q, got %q", fill.FieldID, want[fill.FieldID], fill.Value)
		}
	}
}

func TestLocateCitation_Window(t *testing.T) {
	text := "prefix\n" + strings.Repeat("a", 50) + "VALUE" + strings.Repeat("b", 200)
	start := strings.Index(text, "VALUE")
	end := start + len("VALUE")

	citation := LocateCitation(3, text, start, end, 40, 120)

	if citation.DocID != 3 || citation.Page != 1 {
		t.Errorf("unexpected provenance: doc %d page %d", citation.DocID, citation.Page)
	}
	if citation.Start != start || citation.End != end {
		t.Errorf("expected span [%d:%d], got [%d:%d]", start, end, citation.Start, citation.End)
	}
	if !strings.Contains(citation.Excerpt, "VALUE") {
		t.Errorf("excerpt should contain the value: %q", citation.Excerpt)
	}
	if strings.Contains(citation.Excerpt, "\n") {
		t.Errorf("excerpt should have newlines collapsed: %q", citation.Excerpt)
	}
	if len(citation.Excerpt) > 40+len("VALUE")+120 {
		t.Errorf("excerpt longer than window: %d chars", len(citation.Excerpt))
	}
}

func TestLocateCitation_ClipsToBounds(t *testing.T) {
	text := "short text"
	citation := LocateCitation(1, text, 0, 5, 40, 120)

	if citation.Excerpt != "short text" {
		t.Errorf("expected clipped excerpt, got %q", citation.Excerpt)
	}
}
