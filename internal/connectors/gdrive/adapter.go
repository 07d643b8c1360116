// Package gdrive implements the Google Drive source adapter on top of the
// Drive v3 API.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/fetcha-cli/internal/connectors"
	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

var _ driven.SourceAdapter = (*Adapter)(nil)

// Google Workspace MIME types.
const (
	mimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	mimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	mimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	mimeTypeFolder       = "application/vnd.google-apps.folder"

	exportMimeText = "text/plain"
	exportMimeCSV  = "text/csv"
)

// createdWindow is how close a file's modified time must be to its
// created time for the activity to count as a creation rather than an
// edit.
const createdWindow = 60 * time.Second

// fileFields lists the metadata requested per file.
const fileFields = "id, name, description, mimeType, webViewLink, modifiedTime, createdTime, owners, lastModifyingUser, ownedByMe, capabilities(canEdit), trashed"

// Adapter serves search, document and recent-activity requests from
// Google Drive. The Drive service is created lazily on first use so
// construction never touches the network.
type Adapter struct {
	token   string
	limiter *connectors.RateLimiter
	retry   connectors.RetryPolicy

	mu  sync.Mutex
	svc *drive.Service
}

// New creates a Drive adapter using the given bearer token.
func New(token string) *Adapter {
	return &Adapter{
		token: token,
		// Drive allows 10 requests/sec/user; stay under it.
		limiter: connectors.NewRateLimiter(connectors.RateLimitConfig{RequestsPerSecond: 8.0, BurstSize: 10}),
		retry:   connectors.DefaultRetryPolicy,
	}
}

// Source implements driven.SourceAdapter.
func (a *Adapter) Source() domain.Source { return domain.SourceGoogleDrive }

func (a *Adapter) service(ctx context.Context) (*drive.Service, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.svc != nil {
		return a.svc, nil
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: a.token, TokenType: "Bearer"})
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	a.svc = svc
	return svc, nil
}

// Search implements driven.SourceAdapter.
func (a *Adapter) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	svc, err := a.service(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("fullText contains '%s' and trashed = false", escapeQuery(query))

	var files []*drive.File
	err = connectors.Retry(ctx, a.retry, "drive search", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		list, err := svc.Files.List().
			Q(q).
			PageSize(int64(maxResults)).
			Fields("files(" + fileFields + ")").
			Context(ctx).
			Do()
		if err != nil {
			return mapError("search", err)
		}
		files = list.Files
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(files))
	for _, f := range files {
		if f.MimeType == mimeTypeFolder {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:           domain.SourceGoogleDrive.DocumentID(f.Id),
			Title:        f.Name,
			Snippet:      searchSnippet(f),
			URL:          f.WebViewLink,
			Source:       domain.SourceGoogleDrive,
			LastModified: f.ModifiedTime,
			Author:       fileAuthor(f),
			AccessLevel:  accessLevel(f),
		})
	}
	return results, nil
}

// GetDocument implements driven.SourceAdapter.
func (a *Adapter) GetDocument(ctx context.Context, nativeID string) (*domain.DocumentContent, error) {
	svc, err := a.service(ctx)
	if err != nil {
		return nil, err
	}

	var file *drive.File
	err = connectors.Retry(ctx, a.retry, "drive get", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		f, err := svc.Files.Get(nativeID).Fields(fileFields).Context(ctx).Do()
		if err != nil {
			return mapError("document", err)
		}
		file = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	var content string
	err = connectors.Retry(ctx, a.retry, "drive content", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		c, err := fetchContent(ctx, svc, file)
		if err != nil {
			return mapError("document", err)
		}
		content = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.DocumentContent{
		ID:           domain.SourceGoogleDrive.DocumentID(file.Id),
		Title:        file.Name,
		Content:      domain.TruncateContent(content, domain.MaxContentBytes),
		Source:       domain.SourceGoogleDrive,
		URL:          file.WebViewLink,
		LastModified: file.ModifiedTime,
		Author:       fileAuthor(file),
	}, nil
}

// GetRecentUpdates implements driven.SourceAdapter.
func (a *Adapter) GetRecentUpdates(ctx context.Context, days int) ([]domain.RecentUpdate, error) {
	svc, err := a.service(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	q := fmt.Sprintf("modifiedTime > '%s' and trashed = false", cutoff)

	var files []*drive.File
	err = connectors.Retry(ctx, a.retry, "drive updates", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		list, err := svc.Files.List().
			Q(q).
			OrderBy("modifiedTime desc").
			PageSize(50).
			Fields("files(" + fileFields + ")").
			Context(ctx).
			Do()
		if err != nil {
			return mapError("updates", err)
		}
		files = list.Files
		return nil
	})
	if err != nil {
		return nil, err
	}

	updates := make([]domain.RecentUpdate, 0, len(files))
	for _, f := range files {
		if f.MimeType == mimeTypeFolder {
			continue
		}
		updateType := classifyUpdate(f)
		updates = append(updates, domain.RecentUpdate{
			ID:           domain.SourceGoogleDrive.DocumentID(f.Id),
			Title:        f.Name,
			Snippet:      updateSnippet(f, updateType),
			URL:          f.WebViewLink,
			Source:       domain.SourceGoogleDrive,
			LastModified: f.ModifiedTime,
			Author:       fileAuthor(f),
			UpdateType:   updateType,
		})
	}
	return updates, nil
}

// searchSnippet uses the file description when one exists, otherwise
// synthesizes a snippet from the name and MIME type.
func searchSnippet(f *drive.File) string {
	if f.Description != "" {
		return domain.TruncateSnippet(f.Description)
	}
	mimeType := f.MimeType
	if mimeType == "" {
		mimeType = "Unknown type"
	}
	return domain.TruncateSnippet("Document: " + fileName(f) + " - " + mimeType)
}

// updateSnippet synthesizes an activity line for files without a
// description.
func updateSnippet(f *drive.File, updateType domain.UpdateType) string {
	if f.Description != "" {
		return domain.TruncateSnippet(f.Description)
	}
	action := "Modified"
	if updateType == domain.UpdateCreated {
		action = "Created"
	}
	return domain.TruncateSnippet(action + " document: " + fileName(f))
}

func fileName(f *drive.File) string {
	if f.Name == "" {
		return "Untitled"
	}
	return f.Name
}

// classifyUpdate distinguishes creation from modification: a file whose
// modified time sits within createdWindow of its created time counts as
// newly created.
func classifyUpdate(f *drive.File) domain.UpdateType {
	created, errC := time.Parse(time.RFC3339, f.CreatedTime)
	modified, errM := time.Parse(time.RFC3339, f.ModifiedTime)
	if errC == nil && errM == nil && modified.Sub(created) < createdWindow {
		return domain.UpdateCreated
	}
	return domain.UpdateModified
}

func accessLevel(f *drive.File) domain.AccessLevel {
	switch {
	case f.OwnedByMe:
		return domain.AccessOwner
	case f.Capabilities != nil && f.Capabilities.CanEdit:
		return domain.AccessEditor
	default:
		return domain.AccessViewer
	}
}

func fileAuthor(f *drive.File) string {
	if f.LastModifyingUser != nil && f.LastModifyingUser.DisplayName != "" {
		return f.LastModifyingUser.DisplayName
	}
	if len(f.Owners) > 0 {
		return f.Owners[0].DisplayName
	}
	return ""
}

// escapeQuery escapes the characters with meaning inside a Drive query
// string literal.
func escapeQuery(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	return strings.ReplaceAll(q, `'`, `\'`)
}

// fetchContent exports Google Workspace files to text and downloads
// plain files directly. Non-text binaries yield empty content rather
// than an error.
func fetchContent(ctx context.Context, svc *drive.Service, file *drive.File) (string, error) {
	switch file.MimeType {
	case mimeTypeGoogleDoc, mimeTypeGoogleSlides:
		return export(ctx, svc, file.Id, exportMimeText)
	case mimeTypeGoogleSheet:
		return export(ctx, svc, file.Id, exportMimeCSV)
	}

	if !strings.HasPrefix(file.MimeType, "text/") && file.MimeType != "application/json" {
		return "", nil
	}

	resp, err := svc.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, domain.MaxContentBytes+1))
	if err != nil {
		return "", fmt.Errorf("read file content: %w", err)
	}
	return string(data), nil
}

func export(ctx context.Context, svc *drive.Service, fileID, mime string) (string, error) {
	resp, err := svc.Files.Export(fileID, mime).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("export file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, domain.MaxContentBytes+1))
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(data), nil
}
