package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/recourse/internal/llm"
	"github.com/ppiankov/recourse/internal/model"
	"github.com/ppiankov/recourse/internal/worker"
)

const extractionSystem = "You are a clinical documentation assistant that extracts prior authorization questionnaire fields with strict adherence to the requested JSON schema."

// jsonBlockPattern finds the outermost JSON object in model output, which
// may be wrapped in prose or markdown fences
var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

// GenerativeExtractor asks an LLM provider for field fills and verifies the
// output. Depending on the fallback policy, unusable output either degrades
// silently to the pattern backend or surfaces as an error.
type GenerativeExtractor struct {
	provider    llm.Provider
	fallback    *PatternExtractor
	strict      bool
	maxDocChars int
	limiter     *worker.Limiter
}

// NewGenerativeExtractor creates the generative backend
func NewGenerativeExtractor(provider llm.Provider, cfg model.ExtractionConfig, limiter *worker.Limiter) *GenerativeExtractor {
	maxDocChars := cfg.MaxDocChars
	if maxDocChars <= 0 {
		maxDocChars = 3000
	}

	return &GenerativeExtractor{
		provider:    provider,
		fallback:    NewPatternExtractor(),
		strict:      cfg.Fallback == model.FallbackStrict,
		maxDocChars: maxDocChars,
		limiter:     limiter,
	}
}

// Name returns the backend name
func (e *GenerativeExtractor) Name() string {
	return model.BackendGenerative
}

// Extract builds one combined prompt over all documents, requests strict
// JSON, and normalizes the response. Every target field is present in the
// result: fields absent from the model output are backfilled as missing.
func (e *GenerativeExtractor) Extract(ctx context.Context, docs []model.Document, targetFields []string) ([]model.FieldFill, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, e.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := e.provider.Complete(ctx, llm.CompleteRequest{
		System: extractionSystem,
		Prompt: e.buildPrompt(docs, targetFields),
	})
	if err != nil {
		return e.degrade(ctx, docs, targetFields, fmt.Errorf("model call failed: %w", err))
	}

	fills, err := parseFills(resp.Text, targetFields)
	if err != nil {
		return e.degrade(ctx, docs, targetFields, err)
	}

	return fills, nil
}

// degrade applies the fallback policy for unusable model output
func (e *GenerativeExtractor) degrade(ctx context.Context, docs []model.Document, targetFields []string, cause error) ([]model.FieldFill, error) {
	if e.strict {
		return nil, fmt.Errorf("generative extraction output could not be parsed: %w", cause)
	}
	return e.fallback.Extract(ctx, docs, targetFields)
}

// buildPrompt combines all documents, truncating each to a bounded prefix
func (e *GenerativeExtractor) buildPrompt(docs []model.Document, targetFields []string) string {
	sections := make([]string, 0, len(docs))
	for _, doc := range docs {
		sections = append(sections, fmt.Sprintf("[DOC %d]\n%s", doc.ID, truncate(doc.Text, e.maxDocChars)))
	}

	return "Extract prior authorization questionnaire fields from the provided clinical documents. " +
		"Return a strict JSON object with key 'fills' containing a list of objects: " +
		"{field_id, value, confidence, status, citations:[{doc_id,page,start,end,excerpt}]}. " +
		fmt.Sprintf("Target fields: %s. ", strings.Join(targetFields, ", ")) +
		"Use status values autofilled, suggested, or missing.\n\n" +
		fmt.Sprintf("Documents:\n%s", strings.Join(sections, "\n\n"))
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

type generativeCitation struct {
	DocID   int    `json:"doc_id"`
	Page    int    `json:"page"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Excerpt string `json:"excerpt"`
}

type generativeFill struct {
	FieldID    string               `json:"field_id"`
	Value      string               `json:"value"`
	Confidence float64              `json:"confidence"`
	Status     string               `json:"status"`
	Citations  []generativeCitation `json:"citations"`
}

// parseFills extracts and normalizes the fills payload from raw model
// output. It returns an error when no usable JSON object is present or the
// fills list is empty; callers decide whether that degrades or fails.
func parseFills(output string, targetFields []string) ([]model.FieldFill, error) {
	raw := jsonBlockPattern.FindString(output)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var payload struct {
		Fills []generativeFill `json:"fills"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode fills: %w", err)
	}
	if len(payload.Fills) == 0 {
		return nil, fmt.Errorf("model returned no fills")
	}

	byField := make(map[string]model.FieldFill, len(payload.Fills))
	for _, fill := range payload.Fills {
		value := strings.TrimSpace(fill.Value)

		citations := make([]model.Citation, 0, len(fill.Citations))
		for _, c := range fill.Citations {
			page := c.Page
			if page <= 0 {
				page = 1
			}
			citations = append(citations, model.Citation{
				DocID:   c.DocID,
				Page:    page,
				Start:   c.Start,
				End:     c.End,
				Excerpt: c.Excerpt,
			})
		}

		byField[fill.FieldID] = model.FieldFill{
			FieldID:    fill.FieldID,
			Value:      value,
			Confidence: fill.Confidence,
			Status:     NormalizeStatus(fill.Status, value, fill.Confidence),
			Citations:  citations,
		}
	}

	// Guarantee exactly one entry per target field, in order
	result := make([]model.FieldFill, 0, len(targetFields))
	for _, fieldID := range targetFields {
		if fill, ok := byField[fieldID]; ok {
			result = append(result, fill)
			continue
		}
		result = append(result, model.FieldFill{
			FieldID:    fieldID,
			Value:      "",
			Confidence: 0.0,
			Status:     model.FillStatusMissing,
			Citations:  []model.Citation{},
		})
	}

	return result, nil
}
