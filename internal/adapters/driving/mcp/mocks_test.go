package mcp

import (
	"context"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

// mockAggregator is a mock implementation of driving.AggregatorService.
// It records the arguments of the last call.
type mockAggregator struct {
	results []domain.SearchResult
	updates []domain.RecentUpdate
	doc     *domain.DocumentContent
	summary *domain.Summary
	err     error

	searchCalls   int
	gotQuery      string
	gotSources    []domain.Source
	gotMaxResults int
	gotDays       int
	gotDocID      string
	gotDocIDs     []string
	gotMaxLength  int
}

func (m *mockAggregator) Search(
	_ context.Context, query string, sources []domain.Source, maxResults int, _ *domain.Identity,
) ([]domain.SearchResult, error) {
	m.searchCalls++
	m.gotQuery, m.gotSources, m.gotMaxResults = query, sources, maxResults
	return m.results, m.err
}

func (m *mockAggregator) GetDocument(
	_ context.Context, documentID string, _ *domain.Identity,
) (*domain.DocumentContent, error) {
	m.gotDocID = documentID
	return m.doc, m.err
}

func (m *mockAggregator) GetRecentUpdates(
	_ context.Context, sources []domain.Source, days, maxResults int, _ *domain.Identity,
) ([]domain.RecentUpdate, error) {
	m.gotSources, m.gotDays, m.gotMaxResults = sources, days, maxResults
	return m.updates, m.err
}

func (m *mockAggregator) Summarize(
	_ context.Context, documentIDs []string, maxLength int, _ *domain.Identity,
) (*domain.Summary, error) {
	m.gotDocIDs, m.gotMaxLength = documentIDs, maxLength
	return m.summary, m.err
}

// mockIdentity is a mock implementation of driving.IdentityService.
type mockIdentity struct {
	identity *domain.Identity
	err      error
}

func (m *mockIdentity) Current(_ context.Context) (*domain.Identity, error) {
	return m.identity, m.err
}
