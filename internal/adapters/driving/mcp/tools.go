package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/logger"
)

// Request bounds enforced at the tool boundary.
const (
	defaultMaxResults = 10
	maxMaxResults     = 100
	defaultDays       = 7
	maxDays           = 30
	defaultSummaryLen = 500
)

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query      string   `json:"query" jsonschema:"the search query to find documents"`
	Sources    []string `json:"sources,omitempty" jsonschema:"sources to search (gdrive, notion, slack, confluence); all when omitted"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"maximum number of results to return (default 10, max 100)"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// DocumentInput is the input schema for the get_document tool.
type DocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"composite document id, e.g. gdrive:abc123"`
}

// DocumentOutput is the output schema for the get_document tool.
type DocumentOutput struct {
	Document *domain.DocumentContent `json:"document"`
}

// UpdatesInput is the input schema for the get_recent_updates tool.
type UpdatesInput struct {
	Sources    []string `json:"sources,omitempty" jsonschema:"sources to check (gdrive, notion, slack, confluence); all when omitted"`
	Days       int      `json:"days,omitempty" jsonschema:"how many days back to look (default 7, max 30)"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"maximum number of updates to return (default 10, max 100)"`
}

// UpdatesOutput is the output schema for the get_recent_updates tool.
type UpdatesOutput struct {
	Updates []domain.RecentUpdate `json:"updates"`
	Count   int                   `json:"count"`
}

// SummarizeInput is the input schema for the summarize_content tool.
type SummarizeInput struct {
	DocumentIDs []string `json:"document_ids" jsonschema:"composite ids of the documents to summarize"`
	MaxLength   int      `json:"max_length,omitempty" jsonschema:"maximum summary length in characters (default 500)"`
}

// SummarizeOutput is the output schema for the summarize_content tool.
type SummarizeOutput struct {
	Summary *domain.Summary `json:"summary"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search documents across the connected workplace sources",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch the full content of one document by its id",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_recent_updates",
		Description: "List recently created or modified documents across sources",
	}, s.handleGetRecentUpdates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_content",
		Description: "Summarize one or more documents",
	}, s.handleSummarize)
}

// handleSearch handles the search_documents tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	identity, err := s.ports.Identity.Current(ctx)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	sources := parseSources(input.Sources)
	if onlyUnknownSources(input.Sources, sources) {
		return nil, SearchOutput{Results: []domain.SearchResult{}}, nil
	}

	results, err := s.ports.Aggregator.Search(ctx, input.Query, sources,
		clamp(input.MaxResults, defaultMaxResults, maxMaxResults), identity)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

// handleGetDocument handles the get_document tool invocation.
func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	identity, err := s.ports.Identity.Current(ctx)
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	doc, err := s.ports.Aggregator.GetDocument(ctx, input.DocumentID, identity)
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	return nil, DocumentOutput{Document: doc}, nil
}

// handleGetRecentUpdates handles the get_recent_updates tool invocation.
func (s *Server) handleGetRecentUpdates(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdatesInput,
) (*mcp.CallToolResult, UpdatesOutput, error) {
	identity, err := s.ports.Identity.Current(ctx)
	if err != nil {
		return nil, UpdatesOutput{}, err
	}

	sources := parseSources(input.Sources)
	if onlyUnknownSources(input.Sources, sources) {
		return nil, UpdatesOutput{Updates: []domain.RecentUpdate{}}, nil
	}

	updates, err := s.ports.Aggregator.GetRecentUpdates(ctx, sources,
		clamp(input.Days, defaultDays, maxDays),
		clamp(input.MaxResults, defaultMaxResults, maxMaxResults), identity)
	if err != nil {
		return nil, UpdatesOutput{}, err
	}
	if updates == nil {
		updates = []domain.RecentUpdate{}
	}

	return nil, UpdatesOutput{Updates: updates, Count: len(updates)}, nil
}

// handleSummarize handles the summarize_content tool invocation.
func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeInput,
) (*mcp.CallToolResult, SummarizeOutput, error) {
	identity, err := s.ports.Identity.Current(ctx)
	if err != nil {
		return nil, SummarizeOutput{}, err
	}
	if len(input.DocumentIDs) == 0 {
		return nil, SummarizeOutput{}, fmt.Errorf("document_ids must not be empty")
	}

	maxLength := input.MaxLength
	if maxLength <= 0 {
		maxLength = defaultSummaryLen
	}

	summary, err := s.ports.Aggregator.Summarize(ctx, input.DocumentIDs, maxLength, identity)
	if err != nil {
		return nil, SummarizeOutput{}, err
	}

	return nil, SummarizeOutput{Summary: summary}, nil
}

// parseSources converts the requested source names. Unknown names are
// warned and dropped; the remaining known sources are still queried.
func parseSources(names []string) []domain.Source {
	sources := make([]domain.Source, 0, len(names))
	for _, name := range names {
		src, err := domain.ParseSource(name)
		if err != nil {
			logger.Warn("Unknown source %q ignored", name)
			continue
		}
		sources = append(sources, src)
	}
	return sources
}

// onlyUnknownSources reports a non-empty filter that dropped every name.
// Such a filter matches nothing; treating it as empty would widen the
// request to all sources instead.
func onlyUnknownSources(names []string, sources []domain.Source) bool {
	return len(names) > 0 && len(sources) == 0
}

// clamp applies the default for unset values and the upper bound for
// oversized ones.
func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
