package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/recourse/internal/model"
	"github.com/ppiankov/recourse/internal/template"
)

// Well-known files inside a case directory
const (
	CaseFile        = "case.yaml"
	AnswersFile     = "answers.yaml"
	AttestationFile = "attestation.yaml"

	DenialRecordFile = "denial.json"
	AutofillFile     = "autofill.json"
	AppealFile       = "appeal.md"
	PacketMarkdown   = "packet.md"
	PacketJSON       = "packet.json"
)

// CaseHeader identifies a prior-authorization case on disk
type CaseHeader struct {
	ID          int    `yaml:"id" json:"id"`
	PatientName string `yaml:"patient_name" json:"patient_name"`
	MemberID    string `yaml:"member_id,omitempty" json:"member_id,omitempty"`
	PayerName   string `yaml:"payer_name" json:"payer_name"`
	ServiceLine string `yaml:"service_line" json:"service_line"`
}

// Attestation records the clinician sign-off for a case
type Attestation struct {
	Attester   string    `yaml:"attester" json:"attester"`
	Role       string    `yaml:"role,omitempty" json:"role,omitempty"`
	AttestedAt time.Time `yaml:"attested_at" json:"attested_at"`
}

// LoadCase reads and validates the case header
func LoadCase(caseDir string) (*CaseHeader, error) {
	data, err := os.ReadFile(filepath.Join(caseDir, CaseFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", CaseFile, err)
	}

	var header CaseHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("parse %s: %w", CaseFile, err)
	}

	if header.ID <= 0 {
		return nil, fmt.Errorf("%s: case id must be positive", CaseFile)
	}
	if strings.TrimSpace(header.ServiceLine) == "" {
		return nil, fmt.Errorf("%s: service_line is required", CaseFile)
	}

	return &header, nil
}

// LoadAnswers reads the case answer set. A missing file is not an error:
// it means the questionnaire has not been touched yet.
func LoadAnswers(caseDir string) (map[string]template.Answer, error) {
	data, err := os.ReadFile(filepath.Join(caseDir, AnswersFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", AnswersFile, err)
	}

	var answers map[string]template.Answer
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse %s: %w", AnswersFile, err)
	}

	return answers, nil
}

// SaveAnswers writes the case answer set
func SaveAnswers(caseDir string, answers map[string]template.Answer) error {
	data, err := yaml.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	if err := os.WriteFile(filepath.Join(caseDir, AnswersFile), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", AnswersFile, err)
	}

	return nil
}

// LoadAttestation reads the case attestation if present
func LoadAttestation(caseDir string) (*Attestation, error) {
	data, err := os.ReadFile(filepath.Join(caseDir, AttestationFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", AttestationFile, err)
	}

	var attestation Attestation
	if err := yaml.Unmarshal(data, &attestation); err != nil {
		return nil, fmt.Errorf("parse %s: %w", AttestationFile, err)
	}

	return &attestation, nil
}

// SaveAttestation writes the case attestation
func SaveAttestation(caseDir string, attestation *Attestation) error {
	data, err := yaml.Marshal(attestation)
	if err != nil {
		return fmt.Errorf("marshal attestation: %w", err)
	}

	if err := os.WriteFile(filepath.Join(caseDir, AttestationFile), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", AttestationFile, err)
	}

	return nil
}

// loadDenialRecord reads the persisted denial record from the output dir.
// Returns nil when no denial has been analyzed yet.
func loadDenialRecord(caseDir, outDir string) (*model.ParsedDenial, error) {
	data, err := os.ReadFile(filepath.Join(caseDir, outDir, DenialRecordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", DenialRecordFile, err)
	}

	var parsed model.ParsedDenial
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", DenialRecordFile, err)
	}

	return &parsed, nil
}

// loadAutofillFills reads the fill set persisted by the last autofill run.
// Returns nil when the case has no autofill record yet.
func loadAutofillFills(caseDir, outDir string) ([]model.FieldFill, error) {
	data, err := os.ReadFile(filepath.Join(caseDir, outDir, AutofillFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", AutofillFile, err)
	}

	var result AutofillResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse %s: %w", AutofillFile, err)
	}

	return result.Fills, nil
}

// AnswersContextText concatenates all answered values into one searchable
// blob, in field id order so the result is deterministic
func AnswersContextText(answers map[string]template.Answer) string {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var parts []string
	for _, id := range ids {
		answer := answers[id]
		if answer.State == template.StateMissing {
			continue
		}
		if value := strings.TrimSpace(answer.Value); value != "" {
			parts = append(parts, value)
		}
	}

	return strings.Join(parts, "\n")
}
