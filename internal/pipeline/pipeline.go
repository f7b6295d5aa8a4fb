package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/recourse/internal/cache"
	"github.com/ppiankov/recourse/internal/denial"
	"github.com/ppiankov/recourse/internal/extract"
	"github.com/ppiankov/recourse/internal/ingest"
	"github.com/ppiankov/recourse/internal/llm"
	"github.com/ppiankov/recourse/internal/model"
	"github.com/ppiankov/recourse/internal/template"
	"github.com/ppiankov/recourse/internal/worker"
)

// suggestionNote flags machine-drafted answers so reviewers can tell them
// apart from clinician-entered values
const suggestionNote = "Model draft suggestion. Verify before submission."

// Pipeline orchestrates case processing: extraction, denial analysis,
// attestation and packet assembly
type Pipeline struct {
	registry  *template.Registry
	extractor extract.Extractor
	cache     cache.Cache
	renderer  *Renderer
	config    *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	registry := template.NewRegistry()
	if cfg.Templates.Dir != "" {
		if err := registry.LoadDir(cfg.Templates.Dir); err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
	}

	// Create LLM provider if configured
	var provider llm.Provider
	if cfg.LLM.Provider != "" {
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Printf("Warning: Failed to initialize LLM provider: %v\n", err)
		} else {
			provider = p
		}
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	extractor, err := extract.New(cfg.Extraction, provider, limiter)
	if err != nil {
		return nil, fmt.Errorf("create extractor: %w", err)
	}

	var resultCache cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = filepath.Join(home, ".recourse", "cache")
		}
		resultCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
	}

	return &Pipeline{
		registry:  registry,
		extractor: extractor,
		cache:     resultCache,
		renderer:  NewRenderer(cfg.Output.Verbose),
		config:    cfg,
	}, nil
}

// Registry exposes the loaded template registry
func (p *Pipeline) Registry() *template.Registry {
	return p.registry
}

// Renderer exposes the output renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// AutofillResult contains the outcome of one autofill run
type AutofillResult struct {
	Header     *CaseHeader       `json:"case"`
	TemplateID string            `json:"template_id"`
	Backend    string            `json:"backend"`
	Fills      []model.FieldFill `json:"fills"`
	Merged     int               `json:"merged"`
	FromCache  bool              `json:"from_cache"`
}

// Autofill extracts questionnaire fields from the case's evidence documents
// and merges draft values into the answer set. Each run replaces prior
// machine drafts so new evidence refreshes stale values; answers a
// clinician has verified are never overwritten.
func (p *Pipeline) Autofill(ctx context.Context, caseDir string) (*AutofillResult, error) {
	header, err := LoadCase(caseDir)
	if err != nil {
		return nil, err
	}

	tmpl, ok := p.registry.Get(header.ServiceLine)
	if !ok {
		return nil, fmt.Errorf("unknown service line %q", header.ServiceLine)
	}

	docs, err := ingest.LoadEvidence(caseDir)
	if err != nil {
		return nil, fmt.Errorf("load evidence: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no evidence documents in %s", filepath.Join(caseDir, ingest.EvidenceDir))
	}

	targetFields := tmpl.FieldIDs()

	fills, fromCache, err := p.extractFields(ctx, tmpl.ID, docs, targetFields)
	if err != nil {
		return nil, err
	}

	answers, err := LoadAnswers(caseDir)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = tmpl.DefaultAnswers()
	}

	merged := 0
	for _, fill := range fills {
		if fill.Status == model.FillStatusMissing {
			continue
		}
		if current, exists := answers[fill.FieldID]; exists && current.State == template.StateVerified {
			continue
		}
		answers[fill.FieldID] = template.Answer{
			Value: fill.Value,
			State: template.StateFilled,
			Note:  suggestionNote,
		}
		merged++
	}

	if err := SaveAnswers(caseDir, answers); err != nil {
		return nil, err
	}

	result := &AutofillResult{
		Header:     header,
		TemplateID: tmpl.ID,
		Backend:    p.extractor.Name(),
		Fills:      fills,
		Merged:     merged,
		FromCache:  fromCache,
	}

	if err := p.writeOutput(caseDir, AutofillFile, result); err != nil {
		return nil, err
	}

	return result, nil
}

// extractFields runs the extraction engine, consulting the result cache
// keyed by backend, template and document content
func (p *Pipeline) extractFields(ctx context.Context, templateID string, docs []model.Document, targetFields []string) ([]model.FieldFill, bool, error) {
	var key string
	if p.cache != nil {
		parts := []string{"autofill", p.extractor.Name(), templateID}
		for _, doc := range docs {
			parts = append(parts, cache.Digest(doc.Text))
		}
		key = cache.ResultKey(parts...)

		if data, found := p.cache.Get(key); found {
			var fills []model.FieldFill
			if err := json.Unmarshal(data, &fills); err == nil {
				return fills, true, nil
			}
			_ = p.cache.Delete(key)
		}
	}

	fills, err := p.extractor.Extract(ctx, docs, targetFields)
	if err != nil {
		return nil, false, fmt.Errorf("extract fields: %w", err)
	}

	if p.cache != nil {
		if data, err := json.Marshal(fills); err == nil {
			_ = p.cache.Set(key, data, 0)
		}
	}

	return fills, false, nil
}

// DenialResult contains the outcome of one denial analysis
type DenialResult struct {
	Header     *CaseHeader           `json:"case"`
	Parsed     model.ParsedDenial    `json:"parsed"`
	Gap        []model.GapReportItem `json:"gap"`
	AppealPath string                `json:"appeal_path"`
	FromCache  bool                  `json:"from_cache"`
}

// AnalyzeDenial parses a denial letter, reconciles its missing items
// against the current answers and drafts an appeal letter. Re-running
// replaces the case's denial record.
func (p *Pipeline) AnalyzeDenial(caseDir, letterPath string) (*DenialResult, error) {
	header, err := LoadCase(caseDir)
	if err != nil {
		return nil, err
	}

	evidence, err := ingest.LoadEvidence(caseDir)
	if err != nil {
		return nil, fmt.Errorf("load evidence: %w", err)
	}

	letter, err := ingest.LoadDenialLetter(caseDir, letterPath, len(evidence))
	if err != nil {
		return nil, err
	}

	parsed, fromCache := p.parseDenial(letter)

	answers, err := LoadAnswers(caseDir)
	if err != nil {
		return nil, err
	}

	gap := denial.BuildGapReport(parsed.MissingItems, AnswersContextText(answers))

	letterText := denial.ComposeAppealLetter(header.ID, header.PayerName, parsed.Reasons,
		parsed.MissingItems, answers[template.FieldClinicalRationale].Value, parsed.Citations)

	if err := p.writeOutput(caseDir, DenialRecordFile, parsed); err != nil {
		return nil, err
	}

	appealPath := filepath.Join(caseDir, p.config.Output.Dir, AppealFile)
	if err := p.writeText(appealPath, letterText); err != nil {
		return nil, err
	}

	return &DenialResult{
		Header:     header,
		Parsed:     parsed,
		Gap:        gap,
		AppealPath: appealPath,
		FromCache:  fromCache,
	}, nil
}

// parseDenial parses a denial letter, consulting the result cache keyed by
// the letter's document id and content digest
func (p *Pipeline) parseDenial(letter model.Document) (model.ParsedDenial, bool) {
	var key string
	if p.cache != nil {
		key = cache.ResultKey("denial", strconv.Itoa(letter.ID), cache.Digest(letter.Text))

		if data, found := p.cache.Get(key); found {
			var parsed model.ParsedDenial
			if err := json.Unmarshal(data, &parsed); err == nil {
				return parsed, true
			}
			_ = p.cache.Delete(key)
		}
	}

	parsed := denial.ParseLetter(letter.ID, letter.Text)

	if p.cache != nil {
		if data, err := json.Marshal(parsed); err == nil {
			_ = p.cache.Set(key, data, 0)
		}
	}

	return parsed, false
}

// GapReport reconciles the stored denial record's missing items against
// the current answers
func (p *Pipeline) GapReport(caseDir string) ([]model.GapReportItem, error) {
	if _, err := LoadCase(caseDir); err != nil {
		return nil, err
	}

	parsed, err := loadDenialRecord(caseDir, p.config.Output.Dir)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, fmt.Errorf("no denial record for %s: run 'recourse denial' first", caseDir)
	}

	answers, err := LoadAnswers(caseDir)
	if err != nil {
		return nil, err
	}

	return denial.BuildGapReport(parsed.MissingItems, AnswersContextText(answers)), nil
}

// Appeal recomposes the appeal letter from the stored denial record and
// the current answers, picking up clinician edits made since analysis
func (p *Pipeline) Appeal(caseDir string) (string, error) {
	header, err := LoadCase(caseDir)
	if err != nil {
		return "", err
	}

	parsed, err := loadDenialRecord(caseDir, p.config.Output.Dir)
	if err != nil {
		return "", err
	}
	if parsed == nil {
		return "", fmt.Errorf("no denial record for %s: run 'recourse denial' first", caseDir)
	}

	answers, err := LoadAnswers(caseDir)
	if err != nil {
		return "", err
	}

	letterText := denial.ComposeAppealLetter(header.ID, header.PayerName, parsed.Reasons,
		parsed.MissingItems, answers[template.FieldClinicalRationale].Value, parsed.Citations)

	appealPath := filepath.Join(caseDir, p.config.Output.Dir, AppealFile)
	if err := p.writeText(appealPath, letterText); err != nil {
		return "", err
	}

	return letterText, nil
}

// Attest records clinician sign-off for a case. It refuses when required
// fields are missing or the answer set fails template validation.
func (p *Pipeline) Attest(caseDir, attester, role string) (*Attestation, error) {
	header, err := LoadCase(caseDir)
	if err != nil {
		return nil, err
	}

	tmpl, ok := p.registry.Get(header.ServiceLine)
	if !ok {
		return nil, fmt.Errorf("unknown service line %q", header.ServiceLine)
	}

	answers, err := LoadAnswers(caseDir)
	if err != nil {
		return nil, err
	}

	if problems := tmpl.ValidateAnswers(answers); len(problems) > 0 {
		return nil, fmt.Errorf("answers failed validation: %s", problems[0])
	}

	if missing := tmpl.MissingRequiredFields(answers); len(missing) > 0 {
		return nil, fmt.Errorf("required fields still missing: %v", missing)
	}

	attestation := &Attestation{
		Attester:   attester,
		Role:       role,
		AttestedAt: time.Now().UTC(),
	}

	if err := SaveAttestation(caseDir, attestation); err != nil {
		return nil, err
	}

	return attestation, nil
}

// PacketResult contains the outcome of one packet export
type PacketResult struct {
	MarkdownPath string `json:"markdown_path"`
	JSONPath     string `json:"json_path"`
	Draft        bool   `json:"draft"`
}

// packetEvidence is one row of the packet's evidence document inventory
type packetEvidence struct {
	DocumentID int    `json:"document_id"`
	Filename   string `json:"filename"`
	Kind       string `json:"kind"`
}

// packetDenial couples the stored denial record with the appeal draft
// recomposed at export time
type packetDenial struct {
	model.ParsedDenial
	AppealLetterDraft string `json:"appeal_letter_draft"`
}

// packetDocument is the machine-readable packet export
type packetDocument struct {
	Case              *CaseHeader                `json:"case"`
	Template          string                     `json:"template"`
	Answers           map[string]template.Answer `json:"answers"`
	ClinicalRationale string                     `json:"clinical_rationale_draft"`
	Evidence          []packetEvidence           `json:"evidence_documents"`
	CitationMap       []model.FieldFill          `json:"citation_map"`
	Denial            *packetDenial              `json:"denial,omitempty"`
	Attestation       *Attestation               `json:"attestation,omitempty"`
	Draft             bool                       `json:"draft"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

// BuildPacket assembles the submission packet. Without --draft the case
// must be attested first.
func (p *Pipeline) BuildPacket(caseDir string, draft bool) (*PacketResult, error) {
	header, err := LoadCase(caseDir)
	if err != nil {
		return nil, err
	}

	tmpl, ok := p.registry.Get(header.ServiceLine)
	if !ok {
		return nil, fmt.Errorf("unknown service line %q", header.ServiceLine)
	}

	answers, err := LoadAnswers(caseDir)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = tmpl.DefaultAnswers()
	}

	attestation, err := LoadAttestation(caseDir)
	if err != nil {
		return nil, err
	}
	if attestation == nil && !draft {
		return nil, fmt.Errorf("case %d is not attested: run 'recourse attest' or pass --draft", header.ID)
	}

	parsed, err := loadDenialRecord(caseDir, p.config.Output.Dir)
	if err != nil {
		return nil, err
	}

	// Refresh the appeal from the current answers when a denial is on file
	var appealText string
	var denialBlock *packetDenial
	if parsed != nil {
		appealText = denial.ComposeAppealLetter(header.ID, header.PayerName, parsed.Reasons,
			parsed.MissingItems, answers[template.FieldClinicalRationale].Value, parsed.Citations)

		if err := p.writeText(filepath.Join(caseDir, p.config.Output.Dir, AppealFile), appealText); err != nil {
			return nil, err
		}

		denialBlock = &packetDenial{
			ParsedDenial:      *parsed,
			AppealLetterDraft: appealText,
		}
	}

	evidence, err := ingest.LoadEvidence(caseDir)
	if err != nil {
		return nil, fmt.Errorf("load evidence: %w", err)
	}
	inventory := make([]packetEvidence, 0, len(evidence))
	for _, item := range evidence {
		inventory = append(inventory, packetEvidence{
			DocumentID: item.ID,
			Filename:   item.Name,
			Kind:       string(item.Kind),
		})
	}

	fills, err := loadAutofillFills(caseDir, p.config.Output.Dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(fills, func(i, j int) bool { return fills[i].FieldID < fills[j].FieldID })

	doc := packetDocument{
		Case:              header,
		Template:          tmpl.ID,
		Answers:           answers,
		ClinicalRationale: strings.TrimSpace(answers[template.FieldClinicalRationale].Value),
		Evidence:          inventory,
		CitationMap:       fills,
		Denial:            denialBlock,
		Attestation:       attestation,
		Draft:             draft,
		GeneratedAt:       time.Now().UTC(),
	}

	if err := p.writeOutput(caseDir, PacketJSON, doc); err != nil {
		return nil, err
	}

	markdown := p.renderer.PacketMarkdown(header, tmpl, answers, parsed, appealText, attestation, draft)
	markdownPath := filepath.Join(caseDir, p.config.Output.Dir, PacketMarkdown)
	if err := p.writeText(markdownPath, markdown); err != nil {
		return nil, err
	}

	return &PacketResult{
		MarkdownPath: markdownPath,
		JSONPath:     filepath.Join(caseDir, p.config.Output.Dir, PacketJSON),
		Draft:        draft,
	}, nil
}

// RunCase processes one case directory for batch mode and returns a
// one-line summary
func (p *Pipeline) RunCase(ctx context.Context, caseDir string) (string, error) {
	result, err := p.Autofill(ctx, caseDir)
	if err != nil {
		return "", err
	}

	autofilled, suggested := 0, 0
	for _, fill := range result.Fills {
		switch fill.Status {
		case model.FillStatusAutofilled:
			autofilled++
		case model.FillStatusSuggested:
			suggested++
		}
	}

	return fmt.Sprintf("%d fields, %d autofilled, %d suggested, %d merged",
		len(result.Fills), autofilled, suggested, result.Merged), nil
}

// writeOutput writes a JSON artifact into the case output directory
func (p *Pipeline) writeOutput(caseDir, name string, v any) error {
	outDir := filepath.Join(caseDir, p.config.Output.Dir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

// writeText writes a text artifact, creating parent directories
func (p *Pipeline) writeText(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	return nil
}
