package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/recourse/internal/model"
	"github.com/ppiankov/recourse/internal/template"
)

// Renderer formats pipeline results for the terminal and for packet export
type Renderer struct {
	verbose bool
}

// NewRenderer creates a new renderer
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// AutofillSummary prints a terminal summary of an autofill run
func (r *Renderer) AutofillSummary(result *AutofillResult) {
	fmt.Printf("Case #%d (%s)\n", result.Header.ID, result.TemplateID)
	fmt.Printf("Backend: %s", result.Backend)
	if result.FromCache {
		fmt.Printf(" (cached)")
	}
	fmt.Println()

	for _, fill := range result.Fills {
		marker := statusMarker(fill.Status)
		if fill.Status == model.FillStatusMissing {
			fmt.Printf("  %s %-28s (missing)\n", marker, fill.FieldID)
			continue
		}
		fmt.Printf("  %s %-28s %q (%.2f)\n", marker, fill.FieldID, fill.Value, fill.Confidence)
		if r.verbose {
			for _, citation := range fill.Citations {
				fmt.Printf("      doc %d [%d:%d] %s\n", citation.DocID, citation.Start, citation.End, citation.Excerpt)
			}
		}
	}

	fmt.Printf("Merged %d draft value(s) into answers\n", result.Merged)
}

// DenialSummary prints a terminal summary of a denial analysis
func (r *Renderer) DenialSummary(result *DenialResult) {
	fmt.Printf("Case #%d denial analysis\n", result.Header.ID)

	fmt.Println("Reasons:")
	for _, reason := range result.Parsed.Reasons {
		fmt.Printf("  - %s\n", reason)
	}

	fmt.Println("Missing items:")
	for _, item := range result.Parsed.MissingItems {
		fmt.Printf("  - %s\n", item)
	}

	if result.Parsed.ReferenceID != "" {
		fmt.Printf("Reference: %s\n", result.Parsed.ReferenceID)
	}
	if result.Parsed.DeadlineText != "" {
		fmt.Printf("Deadline: %s\n", result.Parsed.DeadlineText)
	}

	r.GapSummary(result.Gap)

	fmt.Printf("Appeal draft: %s\n", result.AppealPath)
}

// GapSummary prints a terminal gap report
func (r *Renderer) GapSummary(items []model.GapReportItem) {
	if len(items) == 0 {
		fmt.Println("Gap report: no missing items on record")
		return
	}

	fmt.Println("Gap report:")
	for _, item := range items {
		fmt.Printf("  [%s] %s\n", item.Status, item.Item)
	}
}

// PacketMarkdown renders the human-readable submission packet
func (r *Renderer) PacketMarkdown(header *CaseHeader, tmpl *template.ServiceLineTemplate,
	answers map[string]template.Answer, parsed *model.ParsedDenial,
	appealText string, attestation *Attestation, draft bool) string {

	var b strings.Builder

	fmt.Fprintf(&b, "# Prior Authorization Packet: Case #%d\n\n", header.ID)
	if draft {
		b.WriteString("**DRAFT - not attested**\n\n")
	}

	fmt.Fprintf(&b, "- Patient: %s\n", header.PatientName)
	if header.MemberID != "" {
		fmt.Fprintf(&b, "- Member ID: %s\n", header.MemberID)
	}
	fmt.Fprintf(&b, "- Payer: %s\n", header.PayerName)
	fmt.Fprintf(&b, "- Service: %s\n\n", tmpl.Name)

	for _, section := range tmpl.Sections {
		fmt.Fprintf(&b, "## %s\n\n", section.Title)
		for _, field := range section.Fields {
			answer := answers[field.ID]
			value := answer.Value
			if answer.State == template.StateMissing || strings.TrimSpace(value) == "" {
				value = "(not provided)"
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", field.Label, value)
		}
		b.WriteString("\n")
	}

	if parsed != nil {
		b.WriteString("## Denial Record\n\n")
		for _, reason := range parsed.Reasons {
			fmt.Fprintf(&b, "- Reason: %s\n", reason)
		}
		for _, item := range parsed.MissingItems {
			fmt.Fprintf(&b, "- Missing item: %s\n", item)
		}
		if parsed.ReferenceID != "" {
			fmt.Fprintf(&b, "- Reference: %s\n", parsed.ReferenceID)
		}
		if parsed.DeadlineText != "" {
			fmt.Fprintf(&b, "- Deadline: %s\n", parsed.DeadlineText)
		}
		b.WriteString("\n")
	}

	if appealText != "" {
		b.WriteString("## Appeal Letter\n\n")
		b.WriteString(appealText)
		if !strings.HasSuffix(appealText, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if attestation != nil {
		b.WriteString("## Attestation\n\n")
		fmt.Fprintf(&b, "Attested by %s", attestation.Attester)
		if attestation.Role != "" {
			fmt.Fprintf(&b, " (%s)", attestation.Role)
		}
		fmt.Fprintf(&b, " on %s\n", attestation.AttestedAt.Format("2006-01-02 15:04 UTC"))
	}

	return b.String()
}

func statusMarker(status model.FillStatus) string {
	switch status {
	case model.FillStatusAutofilled:
		return "✓"
	case model.FillStatusSuggested:
		return "?"
	default:
		return "✗"
	}
}
