package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

// mockAdapter is a configurable in-memory source adapter. All fields are
// read under the mutex so tests can run calls concurrently.
type mockAdapter struct {
	mu sync.Mutex

	source  domain.Source
	results []domain.SearchResult
	updates []domain.RecentUpdate
	docs    map[string]*domain.DocumentContent

	err   error
	delay time.Duration

	searchCalls   int
	documentCalls int
	updatesCalls  int
}

var _ driven.SourceAdapter = (*mockAdapter)(nil)

func (m *mockAdapter) Source() domain.Source { return m.source }

func (m *mockAdapter) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	m.mu.Lock()
	m.searchCalls++
	delay, err, results := m.delay, m.err, m.results
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func (m *mockAdapter) GetDocument(ctx context.Context, nativeID string) (*domain.DocumentContent, error) {
	m.mu.Lock()
	m.documentCalls++
	err, docs := m.err, m.docs
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	doc, ok := docs[nativeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockAdapter) GetRecentUpdates(ctx context.Context, days int) ([]domain.RecentUpdate, error) {
	m.mu.Lock()
	m.updatesCalls++
	delay, err, updates := m.delay, m.err, m.updates
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (m *mockAdapter) calls() (search, document, updates int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls, m.documentCalls, m.updatesCalls
}

// stubRegistry returns a fixed adapter set regardless of identity.
type stubRegistry struct {
	adapters map[domain.Source]driven.SourceAdapter
}

var _ driven.AdapterRegistry = (*stubRegistry)(nil)

func newStubRegistry(adapters ...*mockAdapter) *stubRegistry {
	r := &stubRegistry{adapters: make(map[domain.Source]driven.SourceAdapter)}
	for _, a := range adapters {
		r.adapters[a.source] = a
	}
	return r
}

func (r *stubRegistry) Resolve(context.Context, *domain.Identity) map[domain.Source]driven.SourceAdapter {
	return r.adapters
}

func (r *stubRegistry) Supported() []domain.Source {
	var out []domain.Source
	for _, src := range domain.AllSources() {
		if _, ok := r.adapters[src]; ok {
			out = append(out, src)
		}
	}
	return out
}

// mockCache is a map-backed cache without expiry, recording writes.
type mockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	puts    int
}

var _ driven.Cache = (*mockCache)(nil)

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (c *mockCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *mockCache) Put(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.puts++
}

func (c *mockCache) Close() error { return nil }

func (c *mockCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// mockSummarizer records inputs and returns a canned summary.
type mockSummarizer struct {
	mu       sync.Mutex
	gotDocs  []domain.DocumentContent
	gotLimit int
	summary  *domain.Summary
	err      error
}

var _ driven.Summarizer = (*mockSummarizer)(nil)

func (s *mockSummarizer) Summarize(_ context.Context, docs []domain.DocumentContent, maxLength int) (*domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gotDocs = docs
	s.gotLimit = maxLength
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

// mockCredentialsStore holds credentials keyed by source.
type mockCredentialsStore struct {
	mu    sync.Mutex
	creds map[domain.Source]*domain.SourceCredentials
	err   error
}

var _ driven.CredentialsStore = (*mockCredentialsStore)(nil)

func newMockCredentialsStore() *mockCredentialsStore {
	return &mockCredentialsStore{creds: make(map[domain.Source]*domain.SourceCredentials)}
}

func (s *mockCredentialsStore) Save(_ context.Context, c *domain.SourceCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[c.Source] = c
	return nil
}

func (s *mockCredentialsStore) Get(_ context.Context, source domain.Source) (*domain.SourceCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.creds[source]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *mockCredentialsStore) List(_ context.Context) ([]domain.SourceCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.SourceCredentials, 0, len(s.creds))
	for _, src := range domain.AllSources() {
		if c, ok := s.creds[src]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *mockCredentialsStore) Delete(_ context.Context, source domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, source)
	return nil
}

func (s *mockCredentialsStore) Close() error { return nil }

// mockConfigStore is a flat key/value config.
type mockConfigStore struct {
	values map[string]any
}

var _ driven.ConfigStore = (*mockConfigStore)(nil)

func (c *mockConfigStore) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *mockConfigStore) GetString(key string) string {
	if v, ok := c.values[key].(string); ok {
		return v
	}
	return ""
}

func (c *mockConfigStore) GetInt(key string) int {
	if v, ok := c.values[key].(int); ok {
		return v
	}
	return 0
}

func (c *mockConfigStore) GetBool(key string) bool {
	if v, ok := c.values[key].(bool); ok {
		return v
	}
	return false
}

func (c *mockConfigStore) Set(key string, value any) error {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = value
	return nil
}

func (c *mockConfigStore) Save() error { return nil }
func (c *mockConfigStore) Load() error { return nil }
func (c *mockConfigStore) Path() string {
	return "/tmp/fetcha-test-config.toml"
}
