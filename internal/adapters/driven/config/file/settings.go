package file

import (
	"fmt"
	"time"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

// LoadSettings builds the aggregator settings from the config store,
// falling back to defaults for unset keys.
func LoadSettings(store driven.ConfigStore) (domain.Settings, error) {
	s := domain.DefaultSettings()

	if _, ok := store.Get("cache.enabled"); ok {
		s.CacheEnabled = store.GetBool("cache.enabled")
	}
	loadCacheSettings(store, "cache.search", &s.SearchCache)
	loadCacheSettings(store, "cache.document", &s.DocumentCache)
	loadCacheSettings(store, "cache.updates", &s.UpdatesCache)

	if v := store.GetInt("adapter.timeout_seconds"); v > 0 {
		s.AdapterTimeout = time.Duration(v) * time.Second
	}
	if v := store.GetString("cache.redis_addr"); v != "" {
		s.RedisAddr = v
	}
	if v := store.GetString("summarizer.backend"); v != "" {
		s.Summarizer = domain.SummarizerBackend(v)
	}
	if v := store.GetString("storage.backend"); v != "" {
		s.Storage = domain.StorageBackend(v)
	}
	if v := store.GetString("confluence.base_url"); v != "" {
		s.ConfluenceBaseURL = v
	}

	if err := s.Validate(); err != nil {
		return domain.Settings{}, fmt.Errorf("invalid settings in %s: %w", store.Path(), err)
	}
	return s, nil
}

func loadCacheSettings(store driven.ConfigStore, prefix string, cs *domain.CacheSettings) {
	if v := store.GetInt(prefix + ".capacity"); v > 0 {
		cs.Capacity = v
	}
	if v := store.GetInt(prefix + ".ttl_seconds"); v > 0 {
		cs.TTL = time.Duration(v) * time.Second
	}
}
