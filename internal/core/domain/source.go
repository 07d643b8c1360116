package domain

import "strings"

// Source identifies one workplace document source.
// The set of sources is closed; it is used as the adapter registry key,
// a cache key component, and the permission scope namespace.
type Source string

const (
	// SourceGoogleDrive is the Google Drive file store.
	SourceGoogleDrive Source = "gdrive"
	// SourceNotion is the Notion wiki.
	SourceNotion Source = "notion"
	// SourceSlack is the Slack chat workspace.
	SourceSlack Source = "slack"
	// SourceConfluence is the Confluence knowledge base.
	SourceConfluence Source = "confluence"
)

// AllSources returns every supported source in fixed enumeration order.
// This order is the deterministic default when a request names no sources.
func AllSources() []Source {
	return []Source{SourceGoogleDrive, SourceNotion, SourceSlack, SourceConfluence}
}

// ParseSource converts a string to a Source.
// Returns ErrUnsupportedSource for anything outside the closed set.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.Valid() {
		return "", ErrUnsupportedSource
	}
	return src, nil
}

// Valid reports whether the source is one of the supported sources.
func (s Source) Valid() bool {
	switch s {
	case SourceGoogleDrive, SourceNotion, SourceSlack, SourceConfluence:
		return true
	default:
		return false
	}
}

// ReadScope returns the authorization scope required to read this source.
func (s Source) ReadScope() string {
	return string(s) + ":read"
}

// DocumentID builds a composite document id for a native id from this source.
func (s Source) DocumentID(nativeID string) string {
	return string(s) + ":" + nativeID
}

// ParseDocumentID splits a composite document id into its source and
// native id. Native ids may themselves contain colons, so the id is split
// on the first colon only. An id without a delimiter is ErrMalformedID;
// an unknown source prefix is ErrUnsupportedSource.
func ParseDocumentID(id string) (Source, string, error) {
	prefix, native, ok := strings.Cut(id, ":")
	if !ok || prefix == "" || native == "" {
		return "", "", ErrMalformedID
	}
	src := Source(prefix)
	if !src.Valid() {
		return "", "", ErrUnsupportedSource
	}
	return src, native, nil
}
