package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

func testServer(t *testing.T, agg *mockAggregator) *Server {
	t.Helper()
	srv, err := NewServer(&Ports{
		Aggregator: agg,
		Identity:   &mockIdentity{identity: &domain.Identity{UserID: "u1", Scopes: []string{"gdrive:read"}}},
	})
	require.NoError(t, err)
	return srv
}

func TestNewServer_RequiresPorts(t *testing.T) {
	_, err := NewServer(&Ports{Identity: &mockIdentity{}})
	assert.ErrorIs(t, err, ErrMissingAggregator)

	_, err = NewServer(&Ports{Aggregator: &mockAggregator{}})
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

func TestHandleSearch(t *testing.T) {
	agg := &mockAggregator{
		results: []domain.SearchResult{{ID: "gdrive:a", Title: "Doc", Source: domain.SourceGoogleDrive}},
	}
	srv := testServer(t, agg)

	_, out, err := srv.handleSearch(context.Background(), nil, SearchInput{
		Query:   "roadmap",
		Sources: []string{"gdrive", "notion"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "roadmap", agg.gotQuery)
	assert.Equal(t, []domain.Source{domain.SourceGoogleDrive, domain.SourceNotion}, agg.gotSources)
	assert.Equal(t, defaultMaxResults, agg.gotMaxResults)
}

func TestHandleSearch_ClampsMaxResults(t *testing.T) {
	agg := &mockAggregator{}
	srv := testServer(t, agg)

	_, _, err := srv.handleSearch(context.Background(), nil, SearchInput{Query: "q", MaxResults: 5000})
	require.NoError(t, err)
	assert.Equal(t, maxMaxResults, agg.gotMaxResults)
}

func TestHandleSearch_UnknownSourceIgnored(t *testing.T) {
	agg := &mockAggregator{}
	srv := testServer(t, agg)

	_, _, err := srv.handleSearch(context.Background(), nil, SearchInput{
		Query:   "q",
		Sources: []string{"gdrive", "sharepoint"},
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.Source{domain.SourceGoogleDrive}, agg.gotSources)
}

func TestHandleSearch_AllSourcesUnknown(t *testing.T) {
	agg := &mockAggregator{}
	srv := testServer(t, agg)

	_, out, err := srv.handleSearch(context.Background(), nil, SearchInput{
		Query:   "q",
		Sources: []string{"sharepoint", "jira"},
	})

	require.NoError(t, err)
	assert.NotNil(t, out.Results)
	assert.Zero(t, out.Count)
	assert.Zero(t, agg.searchCalls, "a filter of only unknown names must not fan out")
}

func TestParseSources_DropsUnknownNames(t *testing.T) {
	sources := parseSources([]string{"gdrive", "sharepoint"})
	assert.Equal(t, []domain.Source{domain.SourceGoogleDrive}, sources)

	assert.Empty(t, parseSources([]string{"sharepoint"}))
	assert.Empty(t, parseSources(nil))
}

func TestHandleSearch_EmptyResultsNotNull(t *testing.T) {
	srv := testServer(t, &mockAggregator{})

	_, out, err := srv.handleSearch(context.Background(), nil, SearchInput{Query: "q"})
	require.NoError(t, err)
	assert.NotNil(t, out.Results)
	assert.Zero(t, out.Count)
}

func TestHandleGetDocument(t *testing.T) {
	agg := &mockAggregator{doc: &domain.DocumentContent{ID: "gdrive:a", Title: "Doc"}}
	srv := testServer(t, agg)

	_, out, err := srv.handleGetDocument(context.Background(), nil, DocumentInput{DocumentID: "gdrive:a"})

	require.NoError(t, err)
	assert.Equal(t, "gdrive:a", agg.gotDocID)
	assert.Equal(t, "Doc", out.Document.Title)
}

func TestHandleGetDocument_ErrorPropagates(t *testing.T) {
	agg := &mockAggregator{err: domain.ErrNotFound}
	srv := testServer(t, agg)

	_, _, err := srv.handleGetDocument(context.Background(), nil, DocumentInput{DocumentID: "gdrive:gone"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandleGetRecentUpdates_Bounds(t *testing.T) {
	agg := &mockAggregator{}
	srv := testServer(t, agg)

	_, _, err := srv.handleGetRecentUpdates(context.Background(), nil, UpdatesInput{Days: 365, MaxResults: -1})
	require.NoError(t, err)
	assert.Equal(t, maxDays, agg.gotDays)
	assert.Equal(t, defaultMaxResults, agg.gotMaxResults)

	_, _, err = srv.handleGetRecentUpdates(context.Background(), nil, UpdatesInput{})
	require.NoError(t, err)
	assert.Equal(t, defaultDays, agg.gotDays)
}

func TestHandleSummarize(t *testing.T) {
	agg := &mockAggregator{summary: &domain.Summary{Summary: "text"}}
	srv := testServer(t, agg)

	_, out, err := srv.handleSummarize(context.Background(), nil, SummarizeInput{
		DocumentIDs: []string{"gdrive:a", "notion:b"},
	})

	require.NoError(t, err)
	assert.Equal(t, "text", out.Summary.Summary)
	assert.Equal(t, []string{"gdrive:a", "notion:b"}, agg.gotDocIDs)
	assert.Equal(t, defaultSummaryLen, agg.gotMaxLength)
}

func TestHandleSummarize_RequiresIDs(t *testing.T) {
	srv := testServer(t, &mockAggregator{})

	_, _, err := srv.handleSummarize(context.Background(), nil, SummarizeInput{})
	assert.Error(t, err)
}

func TestHandlers_IdentityError(t *testing.T) {
	srv, err := NewServer(&Ports{
		Aggregator: &mockAggregator{},
		Identity:   &mockIdentity{err: errors.New("store unavailable")},
	})
	require.NoError(t, err)

	_, _, err = srv.handleSearch(context.Background(), nil, SearchInput{Query: "q"})
	assert.ErrorContains(t, err, "store unavailable")
}
