package driven

import (
	"context"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

// SourceAdapter exposes one workplace source behind a uniform contract.
// Each adapter is constructed for a specific identity and carries that
// caller's credentials; the aggregator treats it as a black box.
//
// Adapters must never block indefinitely: the aggregator imposes an
// external per-call timeout via the context. Adapters should retry
// transient upstream failures (network, 5xx, rate limit) up to a small
// bounded count with exponential backoff before propagating a
// *domain.AdapterError.
type SourceAdapter interface {
	// Source returns the source this adapter serves.
	Source() domain.Source

	// Search returns results matching the query, in the source's own
	// relevance order, at most maxResults entries.
	Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error)

	// GetDocument fetches one document by its native (source-local) id.
	// Fails with domain.ErrNotFound, domain.ErrAccessDenied, or a
	// *domain.AdapterError.
	GetDocument(ctx context.Context, nativeID string) (*domain.DocumentContent, error)

	// GetRecentUpdates returns activity from the last given number of
	// days. The update type is derived by the adapter, not the caller.
	GetRecentUpdates(ctx context.Context, days int) ([]domain.RecentUpdate, error)
}

// AdapterRegistry resolves the adapters available to an identity.
// The set of constructible adapters is fixed at startup; only the identity
// parameterizes resolution. Construction performs no network I/O.
type AdapterRegistry interface {
	// Resolve returns one adapter per configured source for the identity.
	// Sources without a registered factory or without usable credentials
	// are simply absent from the map: unsupported, not an error.
	Resolve(ctx context.Context, identity *domain.Identity) map[domain.Source]SourceAdapter

	// Supported returns the sources with a registered factory, in
	// enumeration order. Used as the default source set.
	Supported() []domain.Source
}
