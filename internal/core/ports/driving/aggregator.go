package driving

import (
	"context"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

// AggregatorService is the unified query surface over all configured
// sources. Multi-source operations degrade gracefully: a failing source
// is excluded from the result instead of failing the operation.
type AggregatorService interface {
	// Search fans the query out to the permitted sources and returns the
	// merged result list, truncated to maxResults. An empty source list
	// means all supported sources.
	Search(ctx context.Context, query string, sources []domain.Source, maxResults int, identity *domain.Identity) ([]domain.SearchResult, error)

	// GetDocument fetches one document by composite id ("<source>:<id>").
	GetDocument(ctx context.Context, documentID string, identity *domain.Identity) (*domain.DocumentContent, error)

	// GetRecentUpdates returns activity from the last given number of
	// days across the permitted sources, sorted by last_modified
	// descending, truncated to maxResults.
	GetRecentUpdates(ctx context.Context, sources []domain.Source, days, maxResults int, identity *domain.Identity) ([]domain.RecentUpdate, error)

	// Summarize fetches the given documents and passes them to the
	// summarizer with the requested length bound. Per-id failures are
	// tolerated; the summary covers the successfully fetched subset.
	Summarize(ctx context.Context, documentIDs []string, maxLength int, identity *domain.Identity) (*domain.Summary, error)
}

// IdentityService resolves the identity context for the local user.
type IdentityService interface {
	// Current builds the identity from stored credentials: the caller id
	// and email from configuration, the scope set from the union of
	// per-source grants.
	Current(ctx context.Context) (*domain.Identity, error)
}
