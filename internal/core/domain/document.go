package domain

import "unicode/utf8"

// AccessLevel describes the caller's relationship to a document.
type AccessLevel string

const (
	// AccessOwner means the caller owns the document.
	AccessOwner AccessLevel = "owner"
	// AccessEditor means the caller can modify the document.
	AccessEditor AccessLevel = "editor"
	// AccessViewer means the caller can read the document.
	AccessViewer AccessLevel = "viewer"
	// AccessRestricted means the caller has limited visibility.
	AccessRestricted AccessLevel = "restricted"
)

// UpdateType classifies a recent-activity entry.
// It is derived by the adapter, never by the aggregator.
type UpdateType string

const (
	// UpdateCreated means the document was newly created.
	UpdateCreated UpdateType = "created"
	// UpdateModified means the document content changed.
	UpdateModified UpdateType = "modified"
	// UpdateShared means the document was shared with someone.
	UpdateShared UpdateType = "shared"
	// UpdateCommented means a comment or message was added.
	UpdateCommented UpdateType = "commented"
)

const (
	// SnippetRuneLimit is the maximum snippet length in characters.
	// Longer snippets are truncated with a trailing ellipsis marker.
	SnippetRuneLimit = 200

	// MaxContentBytes caps document content to bound memory and payload
	// size. The cap applies at a UTF-8 boundary, never mid-sequence.
	MaxContentBytes = 10000
)

// SearchResult is a single hit from one source.
// Produced fresh per adapter call, immutable, cached by value.
type SearchResult struct {
	// ID is the composite document id ("<source>:<native-id>").
	ID string `json:"id"`
	// Title is the document title.
	Title string `json:"title"`
	// Snippet is a short excerpt, at most SnippetRuneLimit characters.
	Snippet string `json:"snippet"`
	// URL is the web link to the document.
	URL string `json:"url"`
	// Source is the originating source.
	Source Source `json:"source"`
	// LastModified is an ISO-8601 timestamp string.
	LastModified string `json:"last_modified"`
	// Author is the document author or last editor.
	Author string `json:"author"`
	// AccessLevel is the caller's access to the document.
	AccessLevel AccessLevel `json:"access_level"`
}

// DocumentContent is the fetched content of a single document.
// The ID composite-encodes source and native id so downstream consumers
// (the summarizer) can re-resolve the source without extra lookups.
type DocumentContent struct {
	// ID is the composite document id.
	ID string `json:"id"`
	// Title is the document title.
	Title string `json:"title"`
	// Content is the text content, capped at MaxContentBytes.
	Content string `json:"content"`
	// Source is the originating source.
	Source Source `json:"source"`
	// URL is the web link to the document.
	URL string `json:"url"`
	// LastModified is an ISO-8601 timestamp string.
	LastModified string `json:"last_modified"`
	// Author is the document author.
	Author string `json:"author"`
}

// RecentUpdate is one entry of recent activity from a source.
// Same shape as SearchResult plus the update classification.
type RecentUpdate struct {
	// ID is the composite document id.
	ID string `json:"id"`
	// Title is the document title.
	Title string `json:"title"`
	// Snippet is a short excerpt, at most SnippetRuneLimit characters.
	Snippet string `json:"snippet"`
	// URL is the web link to the document.
	URL string `json:"url"`
	// Source is the originating source.
	Source Source `json:"source"`
	// LastModified is an ISO-8601 timestamp string.
	LastModified string `json:"last_modified"`
	// Author is the user who made the change.
	Author string `json:"author"`
	// UpdateType classifies the change.
	UpdateType UpdateType `json:"update_type"`
}

// Summary is the output of the summarization operation.
type Summary struct {
	// Summary is the synthesized text, bounded by the requested length.
	Summary string `json:"summary"`
	// KeyPoints lists the main points extracted from the documents.
	KeyPoints []string `json:"key_points"`
	// Documents lists the source documents the summary was built from.
	Documents []SummaryDocument `json:"source_documents"`
}

// SummaryDocument references one document that contributed to a summary.
type SummaryDocument struct {
	// ID is the composite document id.
	ID string `json:"id"`
	// Title is the document title.
	Title string `json:"title"`
	// Source is the originating source.
	Source Source `json:"source"`
}

// TruncateSnippet bounds a snippet to SnippetRuneLimit characters,
// appending "..." when truncation occurs.
func TruncateSnippet(s string) string {
	if utf8.RuneCountInString(s) <= SnippetRuneLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:SnippetRuneLimit]) + "..."
}

// TruncateContent bounds content to at most limit bytes without cutting a
// multi-byte UTF-8 sequence. Content is always truncated whole, never
// partially decoded.
func TruncateContent(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
