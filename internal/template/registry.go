package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Answer states for questionnaire fields
const (
	StateMissing  = "missing"
	StateFilled   = "filled"
	StateVerified = "verified"
)

// FieldClinicalRationale is the questionnaire field appeal letters quote from
const FieldClinicalRationale = "clinical_rationale"

// Answer is one questionnaire field answer
type Answer struct {
	Value string `yaml:"value" json:"value"`
	State string `yaml:"state" json:"state"`
	Note  string `yaml:"note,omitempty" json:"note,omitempty"`
}

// FieldSpec describes one questionnaire field
type FieldSpec struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Type     string `yaml:"type" json:"type"` // text, textarea, select, date
	Required bool   `yaml:"required" json:"required"`
}

// Section groups related questionnaire fields
type Section struct {
	ID     string      `yaml:"id" json:"id"`
	Title  string      `yaml:"title" json:"title"`
	Fields []FieldSpec `yaml:"fields" json:"fields"`
}

// EvidenceItem is one entry of a template's evidence checklist
type EvidenceItem struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Required bool   `yaml:"required" json:"required"`
}

// ServiceLineTemplate defines the questionnaire and evidence requirements
// for one prior-authorization service line
type ServiceLineTemplate struct {
	ID                string         `yaml:"id" json:"id"`
	Name              string         `yaml:"name" json:"name"`
	Description       string         `yaml:"description,omitempty" json:"description,omitempty"`
	RequiredFieldIDs  []string       `yaml:"required_field_ids" json:"required_field_ids"`
	EvidenceChecklist []EvidenceItem `yaml:"evidence_checklist,omitempty" json:"evidence_checklist,omitempty"`
	Sections          []Section      `yaml:"sections" json:"sections"`
}

// FieldIDs returns the template's field ids in questionnaire order.
// This ordering is the extraction engine's target-field order.
func (t *ServiceLineTemplate) FieldIDs() []string {
	var ids []string
	for _, section := range t.Sections {
		for _, field := range section.Fields {
			if field.ID != "" {
				ids = append(ids, field.ID)
			}
		}
	}
	return ids
}

// DefaultAnswers returns an all-missing answer set for the template
func (t *ServiceLineTemplate) DefaultAnswers() map[string]Answer {
	answers := make(map[string]Answer, len(t.Sections))
	for _, id := range t.FieldIDs() {
		answers[id] = Answer{State: StateMissing}
	}
	return answers
}

// ValidateAnswers checks an answer set against the template and returns
// human-readable problems (empty slice means valid)
func (t *ServiceLineTemplate) ValidateAnswers(answers map[string]Answer) []string {
	var errs []string

	known := make(map[string]bool)
	for _, id := range t.FieldIDs() {
		known[id] = true
	}

	var unknown []string
	for id := range answers {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errs = append(errs, fmt.Sprintf("unknown field ids: %s", strings.Join(unknown, ", ")))
	}

	for _, id := range sortedKeys(answers) {
		answer := answers[id]
		switch answer.State {
		case StateMissing, StateFilled, StateVerified:
		default:
			errs = append(errs, fmt.Sprintf("invalid state for %q: %q", id, answer.State))
			continue
		}
		if answer.State != StateMissing && strings.TrimSpace(answer.Value) == "" {
			errs = append(errs, fmt.Sprintf("field %q is %s but has no value", id, answer.State))
		}
	}

	return errs
}

// MissingRequiredFields returns required field ids that are not yet
// filled or verified, in template order
func (t *ServiceLineTemplate) MissingRequiredFields(answers map[string]Answer) []string {
	var missing []string
	for _, id := range t.RequiredFieldIDs {
		answer, ok := answers[id]
		if !ok || answer.State == StateMissing || strings.TrimSpace(answer.Value) == "" {
			missing = append(missing, id)
		}
	}
	return missing
}

func sortedKeys(answers map[string]Answer) []string {
	keys := make([]string, 0, len(answers))
	for key := range answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Registry holds the known service-line templates. Built-in templates are
// loaded at construction; additional templates can be read from a directory.
type Registry struct {
	templates map[string]*ServiceLineTemplate
}

// NewRegistry creates a registry pre-loaded with the built-in templates
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]*ServiceLineTemplate)}
	for _, t := range builtinTemplates() {
		r.templates[t.ID] = t
	}
	return r
}

// LoadDir reads *.yaml / *.yml template files from dir into the registry.
// Files with an id matching a built-in template override it.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read template dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read template %s: %w", entry.Name(), err)
		}

		var t ServiceLineTemplate
		if err := yaml.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("parse template %s: %w", entry.Name(), err)
		}
		if t.ID == "" {
			return fmt.Errorf("template %s has no id", entry.Name())
		}

		r.templates[t.ID] = &t
	}

	return nil
}

// Get returns the template with the given id
func (r *Registry) Get(id string) (*ServiceLineTemplate, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// IDs returns all known template ids, sorted
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
