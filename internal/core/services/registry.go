package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fetcha-cli/internal/logger"
)

// Ensure AdapterRegistry implements the interface.
var _ driven.AdapterRegistry = (*AdapterRegistry)(nil)

// AdapterFactory constructs a source adapter bound to one caller's
// credentials. Construction must not perform network I/O; adapters open
// their upstream clients lazily on first use.
type AdapterFactory func(identity *domain.Identity, creds *domain.SourceCredentials) driven.SourceAdapter

// AdapterRegistry maps sources to adapter factories. The factory table is
// built once at startup; resolution is parameterized per request only by
// the identity context.
type AdapterRegistry struct {
	factories map[domain.Source]AdapterFactory
	creds     driven.CredentialsStore
}

// NewAdapterRegistry creates an empty registry backed by the given
// credentials store.
func NewAdapterRegistry(creds driven.CredentialsStore) *AdapterRegistry {
	return &AdapterRegistry{
		factories: make(map[domain.Source]AdapterFactory),
		creds:     creds,
	}
}

// Register installs the factory for a source. Later registrations for the
// same source replace earlier ones.
func (r *AdapterRegistry) Register(src domain.Source, factory AdapterFactory) {
	r.factories[src] = factory
}

// Supported returns the registered sources in enumeration order.
func (r *AdapterRegistry) Supported() []domain.Source {
	var out []domain.Source
	for _, src := range domain.AllSources() {
		if _, ok := r.factories[src]; ok {
			out = append(out, src)
		}
	}
	return out
}

// Resolve builds one adapter per registered source for the identity.
// Sources without stored credentials are skipped: absent from the map,
// not an error.
func (r *AdapterRegistry) Resolve(ctx context.Context, identity *domain.Identity) map[domain.Source]driven.SourceAdapter {
	adapters := make(map[domain.Source]driven.SourceAdapter, len(r.factories))

	for _, src := range domain.AllSources() {
		factory, ok := r.factories[src]
		if !ok {
			continue
		}

		var creds *domain.SourceCredentials
		if r.creds != nil {
			stored, err := r.creds.Get(ctx, src)
			switch {
			case err == nil:
				creds = stored
			case errors.Is(err, domain.ErrNotFound):
				logger.Debug("No credentials stored for %s", src)
			default:
				logger.Warn("Loading credentials for %s: %v", src, err)
			}
		}

		if !creds.Usable() {
			continue
		}
		adapters[src] = factory(identity, creds)
	}

	return adapters
}
