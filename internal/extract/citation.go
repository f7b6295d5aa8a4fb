package extract

import (
	"strings"

	"github.com/ppiankov/recourse/internal/model"
)

// Excerpt window sizes around a field match
const (
	fieldExcerptBefore = 40
	fieldExcerptAfter  = 120
)

// LocateCitation builds a citation for the span [start, end) of text. The
// excerpt covers [start-before, end+after] clipped to the document bounds,
// with newlines collapsed and surrounding whitespace trimmed. Start and end
// always index the original text so callers can re-locate the match.
func LocateCitation(docID int, text string, start, end, before, after int) model.Citation {
	exStart := start - before
	if exStart < 0 {
		exStart = 0
	}
	exEnd := end + after
	if exEnd > len(text) {
		exEnd = len(text)
	}

	excerpt := strings.TrimSpace(strings.ReplaceAll(text[exStart:exEnd], "\n", " "))

	return model.Citation{
		DocID:   docID,
		Page:    1, // Plain-text sources are single-page
		Start:   start,
		End:     end,
		Excerpt: excerpt,
	}
}
