package extract

import (
	"strings"

	"github.com/ppiankov/recourse/internal/model"
)

// Confidence below this threshold demotes an autofilled status to suggested
const autofillConfidenceFloor = 0.85

// Status labels that map to autofilled (subject to the confidence floor)
var autofilledAliases = map[string]bool{
	"autofilled": true,
	"filled":     true,
	"verified":   true,
	"complete":   true,
}

// Status labels that map to suggested
var suggestedAliases = map[string]bool{
	"suggested":    true,
	"review":       true,
	"partial":      true,
	"uncertain":    true,
	"needs_review": true,
}

// NormalizeStatus maps a raw status label, value, and confidence onto the
// canonical tri-state. Rules apply in order, first match wins:
//  1. no non-whitespace value -> missing
//  2. autofilled alias -> autofilled, demoted to suggested below the floor
//  3. suggested alias -> suggested
//  4. literal "missing" -> missing
//  5. anything else -> suggested; unknown labels are never promoted
func NormalizeStatus(rawStatus, value string, confidence float64) model.FillStatus {
	if strings.TrimSpace(value) == "" {
		return model.FillStatusMissing
	}

	normalized := strings.ToLower(strings.TrimSpace(rawStatus))
	if autofilledAliases[normalized] {
		if confidence < autofillConfidenceFloor {
			return model.FillStatusSuggested
		}
		return model.FillStatusAutofilled
	}
	if suggestedAliases[normalized] {
		return model.FillStatusSuggested
	}
	if normalized == string(model.FillStatusMissing) {
		return model.FillStatusMissing
	}

	return model.FillStatusSuggested
}
