package extract

import (
	"testing"

	"github.com/ppiankov/recourse/internal/model"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name       string
		rawStatus  string
		value      string
		confidence float64
		want       model.FillStatus
	}{
		{"empty value forces missing", "autofilled", "   ", 0.99, model.FillStatusMissing},
		{"autofilled above floor", "autofilled", "Lumbar radiculopathy", 0.92, model.FillStatusAutofilled},
		{"autofilled at floor", "autofilled", "yes", 0.85, model.FillStatusAutofilled},
		{"autofilled below floor demotes", "autofilled", "12", 0.78, model.FillStatusSuggested},
		{"filled alias", "filled", "value", 0.9, model.FillStatusAutofilled},
		{"verified alias", "verified", "value", 0.9, model.FillStatusAutofilled},
		{"complete alias", "complete", "value", 0.9, model.FillStatusAutofilled},
		{"suggested alias", "suggested", "value", 0.99, model.FillStatusSuggested},
		{"review alias", "review", "value", 0.99, model.FillStatusSuggested},
		{"needs_review alias", "needs_review", "value", 0.99, model.FillStatusSuggested},
		{"suggested never promoted by confidence", "partial", "value", 1.0, model.FillStatusSuggested},
		{"explicit missing", "missing", "value", 0.9, model.FillStatusMissing},
		{"unknown label", "banana", "value", 0.99, model.FillStatusSuggested},
		{"case and whitespace insensitive", "  AUTOFILLED  ", "value", 0.9, model.FillStatusAutofilled},
		{"empty label", "", "value", 0.9, model.FillStatusSuggested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeStatus(tt.rawStatus, tt.value, tt.confidence)
			if got != tt.want {
				t.Errorf("NormalizeStatus(%q, %q, %v) = %s, want %s",
					tt.rawStatus, tt.value, tt.confidence, got, tt.want)
			}
		})
	}
}
