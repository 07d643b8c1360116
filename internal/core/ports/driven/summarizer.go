package driven

import (
	"context"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

// Summarizer synthesizes a summary from already-fetched documents.
// It is an external collaborator of the aggregation engine: the engine
// fetches the documents, the summarizer only consumes them.
type Summarizer interface {
	// Summarize produces a summary of at most maxLength characters from
	// the given documents.
	Summarize(ctx context.Context, docs []domain.DocumentContent, maxLength int) (*domain.Summary, error)
}
