// Package memory provides an in-process credentials store. Nothing is
// persisted; tokens live only as long as the process. Selected with
// storage.backend = "memory" in the config file.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CredentialsStore = (*Store)(nil)

// Store keeps one credentials record per source, guarded by a mutex.
type Store struct {
	mu    sync.RWMutex
	creds map[domain.Source]domain.SourceCredentials
}

// NewStore creates an empty in-memory credentials store.
func NewStore() *Store {
	return &Store{creds: make(map[domain.Source]domain.SourceCredentials)}
}

// Save stores or replaces the credentials for a source.
func (s *Store) Save(_ context.Context, creds *domain.SourceCredentials) error {
	if creds == nil || creds.ID == "" || !creds.Source.Valid() {
		return fmt.Errorf("credentials need an id and a valid source: %w", domain.ErrUnsupportedSource)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[creds.Source] = *creds
	return nil
}

// Get retrieves the credentials for a source.
func (s *Store) Get(_ context.Context, source domain.Source) (*domain.SourceCredentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creds[source]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := c
	return &out, nil
}

// List returns all stored credentials in source enumeration order.
func (s *Store) List(_ context.Context) ([]domain.SourceCredentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SourceCredentials
	for _, src := range domain.AllSources() {
		if c, ok := s.creds[src]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Delete removes the credentials for a source.
func (s *Store) Delete(_ context.Context, source domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[source]; !ok {
		return domain.ErrNotFound
	}
	delete(s.creds, source)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
