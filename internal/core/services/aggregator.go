package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fetcha-cli/internal/logger"
)

// Ensure Aggregator implements the interface.
var _ driving.AggregatorService = (*Aggregator)(nil)

// DefaultAdapterTimeout bounds one adapter invocation when no timeout is
// configured.
const DefaultAdapterTimeout = 5 * time.Second

// Aggregator fans logical requests out to the permitted source adapters,
// tolerates partial failure, merges the results deterministically, and
// memoizes them in per-operation TTL caches.
type Aggregator struct {
	registry   driven.AdapterRegistry
	summarizer driven.Summarizer

	searchCache   driven.Cache
	documentCache driven.Cache
	updatesCache  driven.Cache

	timeout time.Duration
	flight  singleflight.Group
}

// AggregatorConfig wires the aggregator's collaborators.
// Nil caches disable memoization for that operation kind.
type AggregatorConfig struct {
	Registry       driven.AdapterRegistry
	Summarizer     driven.Summarizer
	SearchCache    driven.Cache
	DocumentCache  driven.Cache
	UpdatesCache   driven.Cache
	AdapterTimeout time.Duration
}

// NewAggregator creates an aggregator from the given configuration.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	timeout := cfg.AdapterTimeout
	if timeout <= 0 {
		timeout = DefaultAdapterTimeout
	}
	return &Aggregator{
		registry:      cfg.Registry,
		summarizer:    cfg.Summarizer,
		searchCache:   cfg.SearchCache,
		documentCache: cfg.DocumentCache,
		updatesCache:  cfg.UpdatesCache,
		timeout:       timeout,
	}
}

// Search fans the query out to the permitted sources and returns the
// concatenated results in requested-source order, truncated to maxResults.
// Per-source failures are excluded; all sources failing still yields an
// empty list, which is a valid success state.
func (a *Aggregator) Search(
	ctx context.Context, query string, sources []domain.Source, maxResults int, identity *domain.Identity,
) ([]domain.SearchResult, error) {
	logger.Section("Search")
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	sources = a.requestedSources(sources)
	logger.Debug("Query %q across %v (limit %d)", query, sources, maxResults)

	key := deriveKey(keyInput{
		Op:      "search",
		Caller:  identity.UserID,
		Query:   query,
		Sources: sourceStrings(sources),
		Limit:   maxResults,
	})
	if cached, ok := cacheGet[[]domain.SearchResult](ctx, a.searchCache, key); ok {
		logger.Info("Returning cached results for query %q", query)
		return cached, nil
	}

	results, err := collapse(ctx, &a.flight, key, func(ctx context.Context) ([]domain.SearchResult, error) {
		permitted := a.permitted(identity, sources)
		adapters := a.registry.Resolve(ctx, identity)

		perSource, failures := fanOut(ctx, a.timeout, "search", permitted, adapters,
			func(ctx context.Context, adapter driven.SourceAdapter) ([]domain.SearchResult, error) {
				return adapter.Search(ctx, query, maxResults)
			})
		logFailures("search", failures)

		merged := flatten(perSource)
		if len(merged) > maxResults {
			merged = merged[:maxResults]
		}
		cachePut(ctx, a.searchCache, key, merged)
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Search returned %d results", len(results))
	return results, nil
}

// GetRecentUpdates merges recent activity across the permitted sources,
// sorts it by last_modified descending (stable, so ties keep the
// requested source order), and truncates to maxResults.
func (a *Aggregator) GetRecentUpdates(
	ctx context.Context, sources []domain.Source, days, maxResults int, identity *domain.Identity,
) ([]domain.RecentUpdate, error) {
	logger.Section("Recent Updates")
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	sources = a.requestedSources(sources)
	logger.Debug("Updates from last %d days across %v (limit %d)", days, sources, maxResults)

	key := deriveKey(keyInput{
		Op:      "updates",
		Caller:  identity.UserID,
		Sources: sourceStrings(sources),
		Days:    days,
		Limit:   maxResults,
	})
	if cached, ok := cacheGet[[]domain.RecentUpdate](ctx, a.updatesCache, key); ok {
		logger.Info("Returning cached updates for last %d days", days)
		return cached, nil
	}

	updates, err := collapse(ctx, &a.flight, key, func(ctx context.Context) ([]domain.RecentUpdate, error) {
		permitted := a.permitted(identity, sources)
		adapters := a.registry.Resolve(ctx, identity)

		perSource, failures := fanOut(ctx, a.timeout, "updates", permitted, adapters,
			func(ctx context.Context, adapter driven.SourceAdapter) ([]domain.RecentUpdate, error) {
				return adapter.GetRecentUpdates(ctx, days)
			})
		logFailures("updates", failures)

		merged := flatten(perSource)
		sortUpdates(merged)
		if len(merged) > maxResults {
			merged = merged[:maxResults]
		}
		cachePut(ctx, a.updatesCache, key, merged)
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Returned %d updates", len(updates))
	return updates, nil
}

// GetDocument fetches a single document by composite id. Unlike the
// multi-source operations, failures here propagate: there is no partial
// result for a single document.
func (a *Aggregator) GetDocument(
	ctx context.Context, documentID string, identity *domain.Identity,
) (*domain.DocumentContent, error) {
	logger.Section("Get Document")
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	src, nativeID, err := domain.ParseDocumentID(documentID)
	if err != nil {
		return nil, fmt.Errorf("document id %q: %w", documentID, err)
	}
	if !identity.CanRead(src) {
		return nil, fmt.Errorf("source %s: %w", src, domain.ErrPermissionDenied)
	}

	adapters := a.registry.Resolve(ctx, identity)
	return a.fetchDocument(ctx, identity, adapters, src, nativeID, documentID)
}

// Summarize batch-fetches the requested documents through the document
// path (sharing its cache), tolerating per-id failures, then hands the
// fetched subset to the summarizer with the length bound.
func (a *Aggregator) Summarize(
	ctx context.Context, documentIDs []string, maxLength int, identity *domain.Identity,
) (*domain.Summary, error) {
	logger.Section("Summarize")
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if a.summarizer == nil {
		return nil, errors.New("summarizer unavailable")
	}
	logger.Debug("Summarizing %d documents (max length %d)", len(documentIDs), maxLength)

	key := deriveKey(keyInput{
		Op:     "summarize",
		Caller: identity.UserID,
		IDs:    documentIDs,
		Length: maxLength,
	})
	if cached, ok := cacheGet[*domain.Summary](ctx, a.documentCache, key); ok {
		logger.Info("Returning cached summary")
		return cached, nil
	}

	adapters := a.registry.Resolve(ctx, identity)

	var docs []domain.DocumentContent
	var failures []domain.SourceFailure
	for _, id := range documentIDs {
		src, nativeID, err := domain.ParseDocumentID(id)
		if err != nil {
			logger.Warn("Skipping document %q: %v", id, err)
			failures = append(failures, domain.SourceFailure{Err: fmt.Errorf("document id %q: %w", id, err)})
			continue
		}
		if !identity.CanRead(src) {
			logger.Warn("Caller lacks %s, skipping %q", src.ReadScope(), id)
			failures = append(failures, domain.SourceFailure{Source: src, Err: domain.ErrPermissionDenied})
			continue
		}
		doc, err := a.fetchDocument(ctx, identity, adapters, src, nativeID, id)
		if err != nil {
			logger.Warn("Fetching document %q: %v", id, err)
			failures = append(failures, domain.SourceFailure{Source: src, Err: err})
			continue
		}
		docs = append(docs, *doc)
	}
	logFailures("summarize", failures)

	summary, err := a.summarizer.Summarize(ctx, docs, maxLength)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	cachePut(ctx, a.documentCache, key, summary)
	return summary, nil
}

// fetchDocument is the shared single-document path used by GetDocument
// and Summarize. Permission has already been checked by the caller.
func (a *Aggregator) fetchDocument(
	ctx context.Context,
	identity *domain.Identity,
	adapters map[domain.Source]driven.SourceAdapter,
	src domain.Source,
	nativeID, documentID string,
) (*domain.DocumentContent, error) {
	key := deriveKey(keyInput{
		Op:     "document",
		Caller: identity.UserID,
		IDs:    []string{documentID},
	})
	if cached, ok := cacheGet[*domain.DocumentContent](ctx, a.documentCache, key); ok {
		logger.Info("Returning cached document %q", documentID)
		return cached, nil
	}

	adapter, ok := adapters[src]
	if !ok {
		return nil, fmt.Errorf("source %s: %w", src, domain.ErrUnsupportedSource)
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	doc, err := adapter.GetDocument(cctx, nativeID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &domain.AdapterError{Source: src, Op: "document", Transient: true, Err: err}
		}
		return nil, err
	}
	cachePut(ctx, a.documentCache, key, doc)
	return doc, nil
}

// requestedSources substitutes the default source set for an empty request.
func (a *Aggregator) requestedSources(sources []domain.Source) []domain.Source {
	if len(sources) > 0 {
		return sources
	}
	return a.registry.Supported()
}

// permitted filters the requested sources by the caller's read scopes.
// Denied sources are a warning, not an error: the caller silently
// receives fewer results.
func (a *Aggregator) permitted(identity *domain.Identity, sources []domain.Source) []domain.Source {
	out := make([]domain.Source, 0, len(sources))
	for _, src := range sources {
		if !identity.CanRead(src) {
			logger.Warn("Caller %s lacks %s, skipping source", identity.UserID, src.ReadScope())
			continue
		}
		out = append(out, src)
	}
	return out
}

// fanOut invokes one adapter call per permitted source concurrently and
// waits for all of them. Results are assembled by requested-source slot,
// so the output order is deterministic regardless of completion order.
// A failed or timed-out call contributes an empty slot and a failure
// record; it never cancels the sibling calls.
func fanOut[T any](
	ctx context.Context,
	timeout time.Duration,
	op string,
	sources []domain.Source,
	adapters map[domain.Source]driven.SourceAdapter,
	call func(context.Context, driven.SourceAdapter) ([]T, error),
) ([][]T, []domain.SourceFailure) {
	perSource := make([][]T, len(sources))
	failures := make([]domain.SourceFailure, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		adapter, ok := adapters[src]
		if !ok {
			logger.Warn("No adapter available for %s", src)
			continue
		}

		wg.Add(1)
		go func(i int, src domain.Source, adapter driven.SourceAdapter) {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			results, err := call(cctx, adapter)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = &domain.AdapterError{Source: src, Op: op, Transient: true, Err: err}
				}
				failures[i] = domain.SourceFailure{Source: src, Err: err}
				return
			}
			perSource[i] = results
		}(i, src, adapter)
	}
	wg.Wait()

	var failed []domain.SourceFailure
	for _, f := range failures {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return perSource, failed
}

// flatten concatenates per-source result slices preserving slot order.
func flatten[T any](perSource [][]T) []T {
	merged := make([]T, 0)
	for _, results := range perSource {
		merged = append(merged, results...)
	}
	return merged
}

// sortUpdates orders updates by last_modified descending. The sort is
// stable: entries with equal timestamps keep their concatenation order.
func sortUpdates(updates []domain.RecentUpdate) {
	times := make(map[int]time.Time, len(updates))
	for i := range updates {
		times[i] = parseModified(updates[i].LastModified)
	}
	// Indices sorted rather than values so the precomputed times map by
	// original position stays valid.
	idx := make([]int, len(updates))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return times[idx[a]].After(times[idx[b]])
	})
	sorted := make([]domain.RecentUpdate, len(updates))
	for i, j := range idx {
		sorted[i] = updates[j]
	}
	copy(updates, sorted)
}

// parseModified parses an ISO-8601 timestamp. Unparseable values sort
// last (zero time).
func parseModified(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// logFailures records per-source failures for observability. Failures of
// multi-source operations never fail the operation itself.
func logFailures(op string, failures []domain.SourceFailure) {
	for _, f := range failures {
		logger.Error("%s from %s failed: %v", op, f.Source, f.Err)
	}
}

// collapse runs fn through the singleflight group so concurrent identical
// cache misses trigger a single fan-out.
func collapse[T any](ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (T, error)) (T, error) {
	v, err, shared := g.Do(key, func() (any, error) {
		return fn(ctx)
	})
	if shared {
		logger.Debug("Collapsed duplicate in-flight request for key %s", key[:8])
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// cacheGet reads and decodes a cached value. A nil cache always misses.
func cacheGet[T any](ctx context.Context, c driven.Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	raw, ok := c.Get(ctx, key)
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("Discarding undecodable cache entry: %v", err)
		return zero, false
	}
	return v, true
}

// cachePut encodes and stores a value. A nil cache drops the write.
func cachePut[T any](ctx context.Context, c driven.Cache, key string, v T) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("Skipping cache write: %v", err)
		return
	}
	c.Put(ctx, key, raw)
}

// sourceStrings converts sources to strings for key derivation.
func sourceStrings(sources []domain.Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = string(s)
	}
	return out
}
