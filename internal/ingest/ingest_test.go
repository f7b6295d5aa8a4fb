package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/recourse/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadEvidence(t *testing.T) {
	caseDir := t.TempDir()
	writeFile(t, filepath.Join(caseDir, EvidenceDir, "02-therapy.txt"), "Conservative therapy: 8 weeks")
	writeFile(t, filepath.Join(caseDir, EvidenceDir, "01-note.txt"), "Primary Diagnosis: Lumbar radiculopathy")
	writeFile(t, filepath.Join(caseDir, EvidenceDir, "scan.pdf"), "%PDF") // Unsupported, ignored

	docs, err := LoadEvidence(caseDir)
	if err != nil {
		t.Fatalf("LoadEvidence failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	// Filename order, ids 1..n
	if docs[0].Name != "01-note.txt" || docs[0].ID != 1 {
		t.Errorf("doc 0 = %s id %d, want 01-note.txt id 1", docs[0].Name, docs[0].ID)
	}
	if docs[1].Name != "02-therapy.txt" || docs[1].ID != 2 {
		t.Errorf("doc 1 = %s id %d, want 02-therapy.txt id 2", docs[1].Name, docs[1].ID)
	}
	for _, doc := range docs {
		if doc.Kind != model.DocumentKindEvidence {
			t.Errorf("doc %s: kind = %s", doc.Name, doc.Kind)
		}
	}
}

func TestLoadEvidence_MissingDir(t *testing.T) {
	docs, err := LoadEvidence(t.TempDir())
	if err != nil {
		t.Fatalf("missing evidence dir should not error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
}

func TestLoadEvidence_NormalizesLineEndings(t *testing.T) {
	caseDir := t.TempDir()
	writeFile(t, filepath.Join(caseDir, EvidenceDir, "note.txt"), "line one\r\nline two")

	docs, err := LoadEvidence(caseDir)
	if err != nil {
		t.Fatalf("LoadEvidence failed: %v", err)
	}

	if strings.Contains(docs[0].Text, "\r") {
		t.Errorf("expected CRLF normalized to LF, got %q", docs[0].Text)
	}
}

func TestLoadEvidence_HTML(t *testing.T) {
	caseDir := t.TempDir()
	writeFile(t, filepath.Join(caseDir, EvidenceDir, "portal.html"),
		`<html><head><script>var x=1;</script><style>p{}</style></head>`+
			`<body><p>Primary Diagnosis: Lumbar radiculopathy</p></body></html>`)

	docs, err := LoadEvidence(caseDir)
	if err != nil {
		t.Fatalf("LoadEvidence failed: %v", err)
	}

	if !strings.Contains(docs[0].Text, "Primary Diagnosis: Lumbar radiculopathy") {
		t.Errorf("expected visible text extracted, got %q", docs[0].Text)
	}
	if strings.Contains(docs[0].Text, "var x=1") {
		t.Errorf("script content should be dropped, got %q", docs[0].Text)
	}
}

func TestLoadDenialLetter(t *testing.T) {
	caseDir := t.TempDir()
	writeFile(t, filepath.Join(caseDir, DenialFile), "Your request has been denied.")

	doc, err := LoadDenialLetter(caseDir, "", 3)
	if err != nil {
		t.Fatalf("LoadDenialLetter failed: %v", err)
	}

	// The letter follows the evidence set in upload order
	if doc.ID != 4 {
		t.Errorf("expected id 4 after 3 evidence docs, got %d", doc.ID)
	}
	if doc.Kind != model.DocumentKindDenial {
		t.Errorf("kind = %s, want %s", doc.Kind, model.DocumentKindDenial)
	}
	if doc.Text != "Your request has been denied." {
		t.Errorf("unexpected text %q", doc.Text)
	}
}

func TestLoadDenialLetter_ExplicitPath(t *testing.T) {
	caseDir := t.TempDir()
	other := filepath.Join(t.TempDir(), "second-denial.txt")
	writeFile(t, other, "Denied again.")

	doc, err := LoadDenialLetter(caseDir, other, 0)
	if err != nil {
		t.Fatalf("LoadDenialLetter failed: %v", err)
	}
	if doc.ID != 1 || doc.Name != "second-denial.txt" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestLoadDenialLetter_Missing(t *testing.T) {
	if _, err := LoadDenialLetter(t.TempDir(), "", 0); err == nil {
		t.Error("expected error for missing denial letter")
	}
}
