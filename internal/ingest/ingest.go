// Package ingest loads case documents from disk into the extraction
// engine's input form. HTML evidence is reduced to visible text; everything
// else is treated as plain text.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/recourse/internal/model"
)

// EvidenceDir is the evidence subdirectory of a case directory
const EvidenceDir = "evidence"

// DenialFile is the default denial letter filename in a case directory
const DenialFile = "denial.txt"

var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

var htmlExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// LoadEvidence reads the case's evidence documents in filename order
// (oldest-first by upload convention) and assigns ids 1..n. A missing
// evidence directory yields an empty set, not an error.
func LoadEvidence(caseDir string) ([]model.Document, error) {
	dir := filepath.Join(caseDir, EvidenceDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read evidence dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if textExtensions[ext] || htmlExtensions[ext] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	docs := make([]model.Document, 0, len(names))
	for i, name := range names {
		text, err := readDocumentText(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read evidence %s: %w", name, err)
		}
		docs = append(docs, model.Document{
			ID:   i + 1,
			Kind: model.DocumentKindEvidence,
			Name: name,
			Text: text,
		})
	}

	return docs, nil
}

// LoadDenialLetter reads the case's denial letter. The letter's id follows
// the evidence set (evidence docs are 1..n, the letter is n+1), matching
// upload order. An explicit path overrides the default location.
func LoadDenialLetter(caseDir, letterPath string, evidenceCount int) (model.Document, error) {
	path := letterPath
	if path == "" {
		path = filepath.Join(caseDir, DenialFile)
	}

	text, err := readDocumentText(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read denial letter: %w", err)
	}

	return model.Document{
		ID:   evidenceCount + 1,
		Kind: model.DocumentKindDenial,
		Name: filepath.Base(path),
		Text: text,
	}, nil
}

// readDocumentText loads a file as document text. Line endings are
// normalized to LF so citation offsets are stable across platforms.
func readDocumentText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text := strings.ReplaceAll(string(raw), "\r\n", "\n")

	ext := strings.ToLower(filepath.Ext(path))
	if htmlExtensions[ext] {
		return htmlToText(text)
	}

	return text, nil
}

// htmlToText extracts visible text from HTML, skipping scripts/styles
func htmlToText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Skip script, style, noscript tags
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String(), nil
}
