package denial

import (
	"fmt"
	"strings"

	"github.com/ppiankov/recourse/internal/model"
)

const citationExcerptMaxLength = 140

// Placeholder lines keep every letter section non-empty
const (
	fallbackReasonLine   = "- Additional review requested"
	fallbackMissingLine  = "- Supplemental evidence attached"
	fallbackRationale    = "Clinical rationale included in attached packet."
	fallbackCitationLine = "- Evidence references are included in packet attachments."
)

// ComposeAppealLetter fills the fixed appeal letter skeleton with the
// denial reasons, submitted missing items, current clinical rationale, and
// supporting citation excerpts. Output is prose for human reviewers; no
// escaping beyond excerpt truncation.
func ComposeAppealLetter(caseID int, payerLabel string, reasons, missingItems []string, clinicalRationale string, citations []model.Citation) string {
	reasonLines := bulletList(reasons, fallbackReasonLine)
	missingLines := bulletList(missingItems, fallbackMissingLine)

	rationale := strings.TrimSpace(clinicalRationale)
	if rationale == "" {
		rationale = fallbackRationale
	}

	citationLines := make([]string, 0, len(citations))
	for _, c := range citations {
		excerpt := truncate(strings.TrimSpace(c.Excerpt), citationExcerptMaxLength)
		citationLines = append(citationLines, fmt.Sprintf("- Doc #%d, page %d: %s", c.DocID, c.Page, excerpt))
	}
	citationBlock := strings.Join(citationLines, "\n")
	if citationBlock == "" {
		citationBlock = fallbackCitationLine
	}

	return fmt.Sprintf(
		"Appeal Request — Case #%d\n"+
			"Payer: %s\n\n"+
			"Dear Prior Authorization Reviewer,\n\n"+
			"We respectfully request reconsideration of this denial. "+
			"The packet has been updated to address each identified gap.\n\n"+
			"Denial reasons noted:\n%s\n\n"+
			"Submitted missing items:\n%s\n\n"+
			"Updated clinical rationale:\n%s\n\n"+
			"Supporting citations:\n%s\n\n"+
			"Thank you for your reconsideration.",
		caseID, payerLabel, reasonLines, missingLines, rationale, citationBlock,
	)
}

// bulletList renders items as "- item" lines, or the fallback when empty
func bulletList(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}
