// Package naive provides the built-in extractive summarizer. It needs no
// API key: the summary is stitched from the leading sentences of each
// document, with one key point per document.
package naive

import (
	"context"
	"strings"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

// Ensure Summarizer implements the interface.
var _ driven.Summarizer = (*Summarizer)(nil)

// DefaultMaxLength bounds the summary when the caller passes none.
const DefaultMaxLength = 500

// Summarizer is the extractive fallback summarizer.
type Summarizer struct{}

// New creates a naive summarizer.
func New() *Summarizer {
	return &Summarizer{}
}

// Summarize implements driven.Summarizer.
func (s *Summarizer) Summarize(_ context.Context, docs []domain.DocumentContent, maxLength int) (*domain.Summary, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	summary := &domain.Summary{
		KeyPoints: make([]string, 0, len(docs)),
		Documents: make([]domain.SummaryDocument, 0, len(docs)),
	}

	var parts []string
	for _, doc := range docs {
		summary.Documents = append(summary.Documents, domain.SummaryDocument{
			ID:     doc.ID,
			Title:  doc.Title,
			Source: doc.Source,
		})

		lead := firstSentence(doc.Content)
		if lead == "" {
			continue
		}
		parts = append(parts, lead)
		summary.KeyPoints = append(summary.KeyPoints, doc.Title+": "+lead)
	}

	summary.Summary = truncateRunes(strings.Join(parts, " "), maxLength)
	return summary, nil
}

// firstSentence returns the first sentence of the text, trimmed.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			return strings.TrimSpace(text[:i+1])
		}
	}
	return text
}

// truncateRunes bounds s to limit characters.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
