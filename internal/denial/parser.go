// Package denial parses payer denial letters into structured records and
// derives gap reports and appeal drafts from them. All functions are pure:
// same input text, same output, no side effects.
package denial

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/recourse/internal/extract"
	"github.com/ppiankov/recourse/internal/model"
)

// Excerpt window sizes around a denial reason match
const (
	reasonExcerptBefore = 50
	reasonExcerptAfter  = 140
)

const fallbackExcerptLength = 180
const missingItemMaxLength = 120

// reasonRule pairs a canonical reason label with its detection pattern
type reasonRule struct {
	label   string
	pattern *regexp.Regexp
}

// reasonRules are scanned in order against the whole letter; every match
// contributes one reason and one citation
var reasonRules = []reasonRule{
	{"Medical necessity not established", regexp.MustCompile(`(?i)medical necessity`)},
	{"Insufficient conservative therapy documentation", regexp.MustCompile(`(?i)conservative therapy|physical therapy`)},
	{"Prior imaging details missing", regexp.MustCompile(`(?i)prior imaging|imaging report`)},
	{"Clinical documentation incomplete", regexp.MustCompile(`(?i)incomplete documentation|missing documentation`)},
}

// missingItemRules hint at documents the payer wants; matches contribute
// the label only, without a citation
var missingItemRules = []reasonRule{
	{"Updated clinical note", regexp.MustCompile(`(?i)clinical note`)},
	{"Conservative therapy trial details", regexp.MustCompile(`(?i)conservative therapy|physical therapy`)},
	{"Prior imaging report", regexp.MustCompile(`(?i)prior imaging|imaging report`)},
	{"Neurologic exam findings", regexp.MustCompile(`(?i)neurologic exam|deficit`)},
}

// defaultMissingItems is used when no hint rule matches
var defaultMissingItems = []string{
	"Updated clinical note",
	"Conservative therapy trial details",
}

var (
	// missingBlockPattern captures a list-like block introduced by common
	// payer phrasings; greedy multi-line capture
	missingBlockPattern = regexp.MustCompile(`(?is)(missing documentation|please provide|required documents?)\s*[:\-]?\s*(.+)`)

	// bulletPrefixPattern strips leading bullet/numbering punctuation
	bulletPrefixPattern = regexp.MustCompile(`^[\-*\d.)\s]+`)

	referencePattern = regexp.MustCompile(`(?i)(?:reference|ref(?:erence)?\s*id)\s*[:#\-]?\s*([A-Za-z0-9\-]+)`)

	// deadlinePattern accepts "Month DD, YYYY", "YYYY-MM-DD", or
	// "MM/DD/YYYY" (two-or-four-digit year); the captured substring is
	// returned verbatim, never parsed to a date
	deadlinePattern = regexp.MustCompile(`(?i)(?:deadline|due(?:\s+date)?)\s*[:\-]?\s*([A-Za-z]+\s+\d{1,2},\s+\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4})`)
)

// ParseLetter extracts reasons, missing items, reference id, deadline text,
// and citations from an unstructured denial letter. Repeated calls on the
// same text return the same record.
func ParseLetter(docID int, text string) model.ParsedDenial {
	var reasons []string
	var citations []model.Citation

	for _, rule := range reasonRules {
		loc := rule.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		reasons = append(reasons, rule.label)
		citations = append(citations, extract.LocateCitation(docID, text, loc[0], loc[1], reasonExcerptBefore, reasonExcerptAfter))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Payer requested additional documentation")
		citations = append(citations, fallbackCitation(docID, text))
	}

	var missingItems []string
	for _, rule := range missingItemRules {
		if rule.pattern.MatchString(text) {
			missingItems = append(missingItems, rule.label)
		}
	}
	if len(missingItems) == 0 {
		missingItems = append(missingItems, defaultMissingItems...)
	}
	missingItems = appendBlockItems(missingItems, text)

	parsed := model.ParsedDenial{
		Reasons:      reasons,
		MissingItems: dedupeSorted(missingItems),
		Citations:    citations,
	}

	if m := referencePattern.FindStringSubmatch(text); m != nil {
		parsed.ReferenceID = m[1]
	}
	if m := deadlinePattern.FindStringSubmatch(text); m != nil {
		parsed.DeadlineText = m[1]
	}

	return parsed
}

// fallbackCitation excerpts the start of the letter when no reason rule
// matched, so the synthesized reason still carries provenance
func fallbackCitation(docID int, text string) model.Citation {
	excerpt := strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	excerpt = truncate(excerpt, fallbackExcerptLength)
	if excerpt == "" {
		excerpt = "No denial content parsed."
	}

	end := fallbackExcerptLength
	if len(text) < end {
		end = len(text)
	}

	return model.Citation{
		DocID:   docID,
		Page:    1,
		Start:   0,
		End:     end,
		Excerpt: excerpt,
	}
}

// appendBlockItems captures line items from a "please provide"-style block
// and appends any not already present
func appendBlockItems(items []string, text string) []string {
	m := missingBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return items
	}

	for _, line := range strings.Split(m[2], "\n") {
		cleaned := strings.TrimSpace(bulletPrefixPattern.ReplaceAllString(line, ""))
		if len(cleaned) <= 4 {
			continue
		}
		if containsString(items, cleaned) {
			continue
		}
		cleaned = truncate(cleaned, missingItemMaxLength)
		items = append(items, cleaned)
	}

	return items
}

// truncate clips s to at most limit bytes without splitting a UTF-8 rune
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// dedupeSorted removes duplicates (first-seen) and sorts alphabetically
func dedupeSorted(items []string) []string {
	seen := make(map[string]bool, len(items))
	unique := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		unique = append(unique, item)
	}

	sort.Strings(unique)
	return unique
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
