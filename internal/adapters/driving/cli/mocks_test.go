package cli

import (
	"context"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driving"
)

// mockAggregator records the last call per operation and returns canned
// values.
type mockAggregator struct {
	results []domain.SearchResult
	doc     *domain.DocumentContent
	updates []domain.RecentUpdate
	summary *domain.Summary
	err     error

	gotQuery   string
	gotSources []domain.Source
	gotLimit   int
	gotDocID   string
	gotDays    int
	gotDocIDs  []string
	gotLength  int
}

var _ driving.AggregatorService = (*mockAggregator)(nil)

func (m *mockAggregator) Search(_ context.Context, query string, sources []domain.Source, maxResults int, _ *domain.Identity) ([]domain.SearchResult, error) {
	m.gotQuery = query
	m.gotSources = sources
	m.gotLimit = maxResults
	return m.results, m.err
}

func (m *mockAggregator) GetDocument(_ context.Context, documentID string, _ *domain.Identity) (*domain.DocumentContent, error) {
	m.gotDocID = documentID
	return m.doc, m.err
}

func (m *mockAggregator) GetRecentUpdates(_ context.Context, sources []domain.Source, days, maxResults int, _ *domain.Identity) ([]domain.RecentUpdate, error) {
	m.gotSources = sources
	m.gotDays = days
	m.gotLimit = maxResults
	return m.updates, m.err
}

func (m *mockAggregator) Summarize(_ context.Context, documentIDs []string, maxLength int, _ *domain.Identity) (*domain.Summary, error) {
	m.gotDocIDs = documentIDs
	m.gotLength = maxLength
	return m.summary, m.err
}

type mockIdentity struct {
	identity *domain.Identity
	err      error
}

var _ driving.IdentityService = (*mockIdentity)(nil)

func (m *mockIdentity) Current(context.Context) (*domain.Identity, error) {
	return m.identity, m.err
}

// mockCredentialsStore keeps credentials in a map keyed by source.
type mockCredentialsStore struct {
	creds map[domain.Source]*domain.SourceCredentials
}

var _ driven.CredentialsStore = (*mockCredentialsStore)(nil)

func newMockCredentialsStore() *mockCredentialsStore {
	return &mockCredentialsStore{creds: make(map[domain.Source]*domain.SourceCredentials)}
}

func (m *mockCredentialsStore) Save(_ context.Context, creds *domain.SourceCredentials) error {
	m.creds[creds.Source] = creds
	return nil
}

func (m *mockCredentialsStore) Get(_ context.Context, source domain.Source) (*domain.SourceCredentials, error) {
	c, ok := m.creds[source]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *mockCredentialsStore) List(context.Context) ([]domain.SourceCredentials, error) {
	var out []domain.SourceCredentials
	for _, src := range domain.AllSources() {
		if c, ok := m.creds[src]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCredentialsStore) Delete(_ context.Context, source domain.Source) error {
	if _, ok := m.creds[source]; !ok {
		return domain.ErrNotFound
	}
	delete(m.creds, source)
	return nil
}

func (m *mockCredentialsStore) Close() error { return nil }

type mockConfigStore struct {
	values map[string]any
}

var _ driven.ConfigStore = (*mockConfigStore)(nil)

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return "/tmp/fetcha-test/config.toml"
}

// setupTestServices swaps the package services for mocks and returns the
// mocks plus a cleanup restoring the previous values.
func setupTestServices() (*mockAggregator, *mockIdentity, func()) {
	prevAgg := aggregatorService
	prevID := identityService
	prevCreds := credentialsStore
	prevCfg := configStore

	agg := &mockAggregator{}
	id := &mockIdentity{identity: &domain.Identity{
		UserID: "user-1",
		Scopes: []string{"gdrive:read", "notion:read", "slack:read", "confluence:read"},
	}}

	aggregatorService = agg
	identityService = id
	credentialsStore = newMockCredentialsStore()
	configStore = newMockConfigStore()

	return agg, id, func() {
		aggregatorService = prevAgg
		identityService = prevID
		credentialsStore = prevCreds
		configStore = prevCfg
	}
}
