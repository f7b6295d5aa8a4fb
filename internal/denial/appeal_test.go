package denial

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ppiankov/recourse/internal/model"
)

func TestComposeAppealLetter(t *testing.T) {
	citations := []model.Citation{
		{DocID: 4, Page: 1, Start: 10, End: 30, Excerpt: "medical necessity was not established"},
	}

	letter := ComposeAppealLetter(31, "Northwind Health",
		[]string{"Medical necessity not established"},
		[]string{"Prior imaging report"},
		"Persistent radicular pain despite 8 weeks of conservative therapy.",
		citations)

	for _, want := range []string{
		"Appeal Request — Case #31",
		"Payer: Northwind Health",
		"- Medical necessity not established",
		"- Prior imaging report",
		"Persistent radicular pain despite 8 weeks of conservative therapy.",
		"- Doc #4, page 1: medical necessity was not established",
		"Thank you for your reconsideration.",
	} {
		if !strings.Contains(letter, want) {
			t.Errorf("letter missing %q", want)
		}
	}
}

func TestComposeAppealLetter_Fallbacks(t *testing.T) {
	letter := ComposeAppealLetter(1, "Payer", nil, nil, "   ", nil)

	for _, want := range []string{
		"- Additional review requested",
		"- Supplemental evidence attached",
		"Clinical rationale included in attached packet.",
		"- Evidence references are included in packet attachments.",
	} {
		if !strings.Contains(letter, want) {
			t.Errorf("letter missing fallback %q", want)
		}
	}
}

func TestComposeAppealLetter_TruncatesExcerpts(t *testing.T) {
	citations := []model.Citation{
		{DocID: 1, Page: 2, Excerpt: strings.Repeat("e", 300)},
	}

	letter := ComposeAppealLetter(1, "Payer", nil, nil, "", citations)

	if strings.Contains(letter, strings.Repeat("e", 141)) {
		t.Error("citation excerpt should be truncated to 140 chars")
	}
	if !strings.Contains(letter, "- Doc #1, page 2: "+strings.Repeat("e", 140)) {
		t.Error("expected truncated excerpt line")
	}

	multibyte := []model.Citation{
		{DocID: 1, Page: 1, Excerpt: "x" + strings.Repeat("é", 100)},
	}
	letter = ComposeAppealLetter(1, "Payer", nil, nil, "", multibyte)
	if !utf8.ValidString(letter) {
		t.Error("excerpt truncation split a rune")
	}
}
