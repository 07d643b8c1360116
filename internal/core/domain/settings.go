package domain

import (
	"fmt"
	"time"
)

// SummarizerBackend identifies which summarizer implementation to use.
type SummarizerBackend string

// Available summarizer backends.
const (
	// SummarizerNaive is the built-in extractive summarizer.
	SummarizerNaive SummarizerBackend = "naive"

	// SummarizerOpenAI uses the OpenAI chat completion API.
	SummarizerOpenAI SummarizerBackend = "openai"
)

// IsValid returns true if the backend is recognised.
func (b SummarizerBackend) IsValid() bool {
	switch b {
	case SummarizerNaive, SummarizerOpenAI:
		return true
	default:
		return false
	}
}

// StorageBackend identifies where credentials are persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists credentials in the local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps credentials in process memory only. Tokens
	// are lost on exit; useful for ephemeral and test setups.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageMemory:
		return true
	default:
		return false
	}
}

// CacheSettings holds capacity and TTL for one result cache.
type CacheSettings struct {
	// Capacity is the maximum number of entries.
	Capacity int

	// TTL is how long an entry stays valid.
	TTL time.Duration
}

// Settings holds the aggregator configuration.
type Settings struct {
	// CacheEnabled toggles result memoization. When false every request
	// fans out to the live sources.
	CacheEnabled bool

	// SearchCache configures the search result cache.
	SearchCache CacheSettings

	// DocumentCache configures the document content cache.
	DocumentCache CacheSettings

	// UpdatesCache configures the recent-updates cache.
	UpdatesCache CacheSettings

	// AdapterTimeout is the wall-clock bound on one adapter invocation.
	AdapterTimeout time.Duration

	// RedisAddr, when set, backs the caches with Redis instead of memory.
	RedisAddr string

	// Summarizer selects the summarizer backend.
	Summarizer SummarizerBackend

	// Storage selects where credentials are persisted.
	Storage StorageBackend

	// ConfluenceBaseURL is the Confluence instance URL (required to use
	// the confluence source, e.g. "https://example.atlassian.net/wiki").
	ConfluenceBaseURL string
}

// DefaultSettings returns the default aggregator configuration.
func DefaultSettings() Settings {
	return Settings{
		CacheEnabled:   true,
		SearchCache:    CacheSettings{Capacity: 100, TTL: 300 * time.Second},
		DocumentCache:  CacheSettings{Capacity: 100, TTL: 600 * time.Second},
		UpdatesCache:   CacheSettings{Capacity: 50, TTL: 300 * time.Second},
		AdapterTimeout: 5 * time.Second,
		Summarizer:     SummarizerNaive,
		Storage:        StorageSQLite,
	}
}

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	for _, c := range []struct {
		name string
		cs   CacheSettings
	}{
		{"search", s.SearchCache},
		{"document", s.DocumentCache},
		{"updates", s.UpdatesCache},
	} {
		if c.cs.Capacity <= 0 {
			return fmt.Errorf("%s cache capacity must be positive: %d", c.name, c.cs.Capacity)
		}
		if c.cs.TTL <= 0 {
			return fmt.Errorf("%s cache TTL must be positive: %s", c.name, c.cs.TTL)
		}
	}
	if s.AdapterTimeout <= 0 {
		return fmt.Errorf("adapter timeout must be positive: %s", s.AdapterTimeout)
	}
	if !s.Summarizer.IsValid() {
		return fmt.Errorf("unknown summarizer backend: %q", s.Summarizer)
	}
	if !s.Storage.IsValid() {
		return fmt.Errorf("unknown storage backend: %q", s.Storage)
	}
	return nil
}
