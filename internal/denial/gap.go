package denial

import (
	"regexp"
	"strings"

	"github.com/ppiankov/recourse/internal/model"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// stopwords excluded from gap keyword matching; generic document words
// would otherwise resolve almost any item
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"that": true, "this": true, "your": true, "please": true,
	"details": true, "documentation": true, "document": true,
	"report": true, "updated": true,
}

// BuildGapReport reconciles missing items against current context text
// (typically the concatenated questionnaire answers). Matching is keyword
// overlap: an item with a single keyword resolves on one substring hit,
// otherwise two hits are required. Items with no usable keywords, or calls
// without context, stay missing.
func BuildGapReport(missingItems []string, contextText string) []model.GapReportItem {
	context := strings.ToLower(contextText)

	report := make([]model.GapReportItem, 0, len(missingItems))
	for _, item := range missingItems {
		keywords := keywordTokens(item)
		if len(keywords) == 0 || context == "" {
			report = append(report, model.GapReportItem{Item: item, Status: model.GapStatusMissing})
			continue
		}

		matched := 0
		for _, keyword := range keywords {
			if strings.Contains(context, keyword) {
				matched++
			}
		}

		required := 2
		if len(keywords) == 1 {
			required = 1
		}

		status := model.GapStatusMissing
		if matched >= required {
			status = model.GapStatusResolved
		}
		report = append(report, model.GapReportItem{Item: item, Status: status})
	}

	return report
}

// keywordTokens lowercases the item, extracts alphanumeric tokens of length
// >= 3, and drops stopwords
func keywordTokens(value string) []string {
	var keywords []string
	for _, token := range tokenPattern.FindAllString(strings.ToLower(value), -1) {
		if len(token) < 3 || stopwords[token] {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}
