package confluence

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/fetcha-cli/internal/connectors"
	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

var _ driven.SourceAdapter = (*Adapter)(nil)

// createdWindow bounds how close the current version may sit to the
// created date for the activity to count as a page creation.
const createdWindow = 60 * time.Second

// Adapter serves search, page and recent-activity requests from
// Confluence.
type Adapter struct {
	client *Client
	retry  connectors.RetryPolicy
}

// New creates a Confluence adapter for the given site.
func New(baseURL, email, token string) *Adapter {
	return &Adapter{
		client: NewClient(baseURL, email, token),
		retry:  connectors.DefaultRetryPolicy,
	}
}

// Source implements driven.SourceAdapter.
func (a *Adapter) Source() domain.Source { return domain.SourceConfluence }

// searchResponse is the shape of /wiki/rest/api/search.
type searchResponse struct {
	Results []struct {
		Content struct {
			ID    string `json:"id"`
			Type  string `json:"type"`
			Title string `json:"title"`
			Links struct {
				WebUI string `json:"webui"`
			} `json:"_links"`
		} `json:"content"`
		Excerpt      string `json:"excerpt"`
		LastModified string `json:"lastModified"`
	} `json:"results"`
	Links struct {
		Base string `json:"base"`
	} `json:"_links"`
}

// contentResponse is the shape of /wiki/rest/api/content/{id}.
type contentResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Version struct {
		When string `json:"when"`
		By   struct {
			DisplayName string `json:"displayName"`
		} `json:"by"`
	} `json:"version"`
	History struct {
		CreatedDate string `json:"createdDate"`
	} `json:"history"`
	Links struct {
		WebUI string `json:"webui"`
		Base  string `json:"base"`
	} `json:"_links"`
}

// Search implements driven.SourceAdapter using CQL full-text search.
func (a *Adapter) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	cql := fmt.Sprintf(`text ~ "%s" and type = page order by lastmodified desc`, escapeCQL(query))

	var resp searchResponse
	err := connectors.Retry(ctx, a.retry, "confluence search", func(ctx context.Context) error {
		q := url.Values{}
		q.Set("cql", cql)
		q.Set("limit", strconv.Itoa(maxResults))
		if err := a.client.get(ctx, "/wiki/rest/api/search", q, &resp); err != nil {
			return mapError("search", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Content.Type != "page" {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:           domain.SourceConfluence.DocumentID(r.Content.ID),
			Title:        r.Content.Title,
			Snippet:      domain.TruncateSnippet(stripHTML(r.Excerpt)),
			URL:          resp.Links.Base + r.Content.Links.WebUI,
			Source:       domain.SourceConfluence,
			LastModified: normalizeTime(r.LastModified),
			AccessLevel:  domain.AccessViewer,
		})
	}
	return results, nil
}

// GetDocument implements driven.SourceAdapter. Page bodies arrive as
// storage-format HTML and are flattened to text.
func (a *Adapter) GetDocument(ctx context.Context, nativeID string) (*domain.DocumentContent, error) {
	var resp contentResponse
	err := connectors.Retry(ctx, a.retry, "confluence page", func(ctx context.Context) error {
		q := url.Values{}
		q.Set("expand", "body.storage,version,history")
		if err := a.client.get(ctx, "/wiki/rest/api/content/"+url.PathEscape(nativeID), q, &resp); err != nil {
			return mapError("document", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.DocumentContent{
		ID:           domain.SourceConfluence.DocumentID(resp.ID),
		Title:        resp.Title,
		Content:      domain.TruncateContent(stripHTML(resp.Body.Storage.Value), domain.MaxContentBytes),
		Source:       domain.SourceConfluence,
		URL:          resp.Links.Base + resp.Links.WebUI,
		LastModified: normalizeTime(resp.Version.When),
		Author:       resp.Version.By.DisplayName,
	}, nil
}

// GetRecentUpdates implements driven.SourceAdapter using a CQL date
// window over last modification.
func (a *Adapter) GetRecentUpdates(ctx context.Context, days int) ([]domain.RecentUpdate, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	cql := fmt.Sprintf(`lastmodified >= "%s" and type = page order by lastmodified desc`, cutoff)

	var resp searchResponse
	err := connectors.Retry(ctx, a.retry, "confluence updates", func(ctx context.Context) error {
		q := url.Values{}
		q.Set("cql", cql)
		q.Set("limit", "50")
		if err := a.client.get(ctx, "/wiki/rest/api/search", q, &resp); err != nil {
			return mapError("updates", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updates := make([]domain.RecentUpdate, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Content.Type != "page" {
			continue
		}
		update := domain.RecentUpdate{
			ID:           domain.SourceConfluence.DocumentID(r.Content.ID),
			Title:        r.Content.Title,
			Snippet:      domain.TruncateSnippet(stripHTML(r.Excerpt)),
			URL:          resp.Links.Base + r.Content.Links.WebUI,
			Source:       domain.SourceConfluence,
			LastModified: normalizeTime(r.LastModified),
			UpdateType:   domain.UpdateModified,
		}
		if t, err := a.classifyUpdate(ctx, r.Content.ID); err == nil {
			update.UpdateType = t
		}
		updates = append(updates, update)
	}
	return updates, nil
}

// classifyUpdate fetches the page history to tell creations apart from
// edits.
func (a *Adapter) classifyUpdate(ctx context.Context, id string) (domain.UpdateType, error) {
	var resp contentResponse
	q := url.Values{}
	q.Set("expand", "version,history")
	if err := a.client.get(ctx, "/wiki/rest/api/content/"+url.PathEscape(id), q, &resp); err != nil {
		return domain.UpdateModified, mapError("updates", err)
	}

	created, errC := parseTime(resp.History.CreatedDate)
	modified, errM := parseTime(resp.Version.When)
	if errC == nil && errM == nil && modified.Sub(created) < createdWindow {
		return domain.UpdateCreated, nil
	}
	return domain.UpdateModified, nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML flattens storage-format markup to plain text. Confluence
// excerpts also carry @@@hl@@@ highlight markers.
func stripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "@@@hl@@@", "")
	s = strings.ReplaceAll(s, "@@@endhl@@@", "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")
	return strings.Join(strings.Fields(s), " ")
}

// confluence timestamps come in a few shapes depending on the endpoint.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05.000-07:00",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// normalizeTime reformats a Confluence timestamp as RFC 3339 so the
// merge sort compares like with like. Unparseable values pass through.
func normalizeTime(s string) string {
	t, err := parseTime(s)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

// escapeCQL escapes the characters with meaning inside a CQL string
// literal.
func escapeCQL(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	return strings.ReplaceAll(q, `"`, `\"`)
}
