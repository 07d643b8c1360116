// Package notion implements the Notion source adapter on top of the
// Notion REST API.
package notion

import (
	"context"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/fetcha-cli/internal/connectors"
	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

var _ driven.SourceAdapter = (*Adapter)(nil)

// createdWindow bounds how close last-edited may sit to created for the
// activity to count as a page creation.
const createdWindow = 60 * time.Second

// blockPageSize is the page size used when reading block children.
const blockPageSize = 100

// Adapter serves search, page and recent-activity requests from Notion.
type Adapter struct {
	client  *notionapi.Client
	limiter *connectors.RateLimiter
	retry   connectors.RetryPolicy
}

// New creates a Notion adapter using the given integration token.
func New(token string) *Adapter {
	return &Adapter{
		client: notionapi.NewClient(notionapi.Token(token)),
		// Notion allows an average of 3 requests/sec.
		limiter: connectors.NewRateLimiter(connectors.RateLimitConfig{RequestsPerSecond: 3.0, BurstSize: 5}),
		retry:   connectors.DefaultRetryPolicy,
	}
}

// Source implements driven.SourceAdapter.
func (a *Adapter) Source() domain.Source { return domain.SourceNotion }

// Search implements driven.SourceAdapter.
func (a *Adapter) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	var resp *notionapi.SearchResponse
	err := connectors.Retry(ctx, a.retry, "notion search", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		r, err := a.client.Search.Do(ctx, &notionapi.SearchRequest{
			Query:    query,
			PageSize: maxResults,
			Filter:   notionapi.SearchFilter{Value: "page", Property: "object"},
		})
		if err != nil {
			return mapError("search", err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(resp.Results))
	for _, obj := range resp.Results {
		page, ok := obj.(*notionapi.Page)
		if !ok || page.Archived {
			continue
		}
		title := pageTitle(page)
		results = append(results, domain.SearchResult{
			ID:           domain.SourceNotion.DocumentID(string(page.ID)),
			Title:        title,
			Snippet:      domain.TruncateSnippet("Page: " + title),
			URL:          page.URL,
			Source:       domain.SourceNotion,
			LastModified: page.LastEditedTime.UTC().Format(time.RFC3339),
			Author:       page.LastEditedBy.Name,
			AccessLevel:  domain.AccessEditor,
		})
	}
	return results, nil
}

// GetDocument implements driven.SourceAdapter. Page text is assembled
// from the page's top-level blocks.
func (a *Adapter) GetDocument(ctx context.Context, nativeID string) (*domain.DocumentContent, error) {
	var page *notionapi.Page
	err := connectors.Retry(ctx, a.retry, "notion page", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		p, err := a.client.Page.Get(ctx, notionapi.PageID(nativeID))
		if err != nil {
			return mapError("document", err)
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	content, err := a.pageText(ctx, nativeID)
	if err != nil {
		return nil, err
	}

	return &domain.DocumentContent{
		ID:           domain.SourceNotion.DocumentID(string(page.ID)),
		Title:        pageTitle(page),
		Content:      domain.TruncateContent(content, domain.MaxContentBytes),
		Source:       domain.SourceNotion,
		URL:          page.URL,
		LastModified: page.LastEditedTime.UTC().Format(time.RFC3339),
		Author:       page.LastEditedBy.Name,
	}, nil
}

// GetRecentUpdates implements driven.SourceAdapter. Notion search with
// an empty query returns everything the integration can see, sorted by
// last edit; the cutoff filter is applied client side.
func (a *Adapter) GetRecentUpdates(ctx context.Context, days int) ([]domain.RecentUpdate, error) {
	var resp *notionapi.SearchResponse
	err := connectors.Retry(ctx, a.retry, "notion updates", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		r, err := a.client.Search.Do(ctx, &notionapi.SearchRequest{
			PageSize: blockPageSize,
			Filter:   notionapi.SearchFilter{Value: "page", Property: "object"},
			Sort: &notionapi.SortObject{
				Direction: "descending",
				Timestamp: "last_edited_time",
			},
		})
		if err != nil {
			return mapError("updates", err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	updates := make([]domain.RecentUpdate, 0, len(resp.Results))
	for _, obj := range resp.Results {
		page, ok := obj.(*notionapi.Page)
		if !ok || page.Archived {
			continue
		}
		if page.LastEditedTime.Before(cutoff) {
			continue
		}
		updateType := classifyUpdate(page)
		title := pageTitle(page)
		updates = append(updates, domain.RecentUpdate{
			ID:           domain.SourceNotion.DocumentID(string(page.ID)),
			Title:        title,
			Snippet:      updateSnippet(title, updateType),
			URL:          page.URL,
			Source:       domain.SourceNotion,
			LastModified: page.LastEditedTime.UTC().Format(time.RFC3339),
			Author:       page.LastEditedBy.Name,
			UpdateType:   updateType,
		})
	}
	return updates, nil
}

// pageText concatenates the plain text of the page's top-level blocks.
func (a *Adapter) pageText(ctx context.Context, pageID string) (string, error) {
	var sb strings.Builder
	cursor := notionapi.Cursor("")

	for {
		var resp *notionapi.GetChildrenResponse
		err := connectors.Retry(ctx, a.retry, "notion blocks", func(ctx context.Context) error {
			if err := a.limiter.Wait(ctx); err != nil {
				return err
			}
			r, err := a.client.Block.GetChildren(ctx, notionapi.BlockID(pageID), &notionapi.Pagination{
				StartCursor: cursor,
				PageSize:    blockPageSize,
			})
			if err != nil {
				return mapError("document", err)
			}
			resp = r
			return nil
		})
		if err != nil {
			return "", err
		}

		for _, block := range resp.Results {
			if text := blockText(block); text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		if !resp.HasMore || sb.Len() > domain.MaxContentBytes {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}
	return sb.String(), nil
}

// classifyUpdate distinguishes page creation from a later edit.
func classifyUpdate(page *notionapi.Page) domain.UpdateType {
	if page.LastEditedTime.Sub(page.CreatedTime) < createdWindow {
		return domain.UpdateCreated
	}
	return domain.UpdateModified
}

// updateSnippet synthesizes an activity line; Notion search results
// carry no excerpt.
func updateSnippet(title string, updateType domain.UpdateType) string {
	action := "Modified"
	if updateType == domain.UpdateCreated {
		action = "Created"
	}
	return domain.TruncateSnippet(action + " page: " + title)
}

// pageTitle extracts the title property's plain text.
func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		title, ok := prop.(*notionapi.TitleProperty)
		if !ok {
			continue
		}
		var sb strings.Builder
		for _, rt := range title.Title {
			sb.WriteString(rt.PlainText)
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return "Untitled"
}

// blockText extracts plain text from the block types that carry it.
func blockText(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return richText(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		return richText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		return richText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		return richText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return richText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return richText(b.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		return richText(b.ToDo.RichText)
	case *notionapi.QuoteBlock:
		return richText(b.Quote.RichText)
	case *notionapi.CalloutBlock:
		return richText(b.Callout.RichText)
	case *notionapi.CodeBlock:
		return richText(b.Code.RichText)
	default:
		return ""
	}
}

func richText(rts []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range rts {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}
