package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

func storedCreds(src domain.Source, token string) *domain.SourceCredentials {
	now := time.Now().UTC()
	return &domain.SourceCredentials{
		ID:          uuid.NewString(),
		Source:      src,
		AccessToken: token,
		Scopes:      []string{src.ReadScope()},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func adapterFactory(src domain.Source) AdapterFactory {
	return func(*domain.Identity, *domain.SourceCredentials) driven.SourceAdapter {
		return &mockAdapter{source: src}
	}
}

func TestRegistry_SupportedInEnumerationOrder(t *testing.T) {
	registry := NewAdapterRegistry(newMockCredentialsStore())
	// Registered out of order on purpose.
	registry.Register(domain.SourceSlack, adapterFactory(domain.SourceSlack))
	registry.Register(domain.SourceGoogleDrive, adapterFactory(domain.SourceGoogleDrive))

	assert.Equal(t, []domain.Source{domain.SourceGoogleDrive, domain.SourceSlack}, registry.Supported())
}

func TestRegistry_ResolveOnlySourcesWithCredentials(t *testing.T) {
	store := newMockCredentialsStore()
	require.NoError(t, store.Save(context.Background(), storedCreds(domain.SourceGoogleDrive, "tok-g")))

	registry := NewAdapterRegistry(store)
	registry.Register(domain.SourceGoogleDrive, adapterFactory(domain.SourceGoogleDrive))
	registry.Register(domain.SourceNotion, adapterFactory(domain.SourceNotion))

	adapters := registry.Resolve(context.Background(), fullIdentity())

	require.Len(t, adapters, 1)
	assert.Contains(t, adapters, domain.SourceGoogleDrive)
	assert.NotContains(t, adapters, domain.SourceNotion)
}

func TestRegistry_ResolveSkipsEmptyToken(t *testing.T) {
	store := newMockCredentialsStore()
	require.NoError(t, store.Save(context.Background(), storedCreds(domain.SourceNotion, "")))

	registry := NewAdapterRegistry(store)
	registry.Register(domain.SourceNotion, adapterFactory(domain.SourceNotion))

	adapters := registry.Resolve(context.Background(), fullIdentity())
	assert.Empty(t, adapters)
}

func TestRegistry_ResolveIgnoresUnregisteredCredentials(t *testing.T) {
	store := newMockCredentialsStore()
	require.NoError(t, store.Save(context.Background(), storedCreds(domain.SourceConfluence, "tok-c")))

	registry := NewAdapterRegistry(store)
	registry.Register(domain.SourceGoogleDrive, adapterFactory(domain.SourceGoogleDrive))

	adapters := registry.Resolve(context.Background(), fullIdentity())
	assert.Empty(t, adapters)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	store := newMockCredentialsStore()
	require.NoError(t, store.Save(context.Background(), storedCreds(domain.SourceGoogleDrive, "tok")))

	first := &mockAdapter{source: domain.SourceGoogleDrive}
	second := &mockAdapter{source: domain.SourceGoogleDrive}

	registry := NewAdapterRegistry(store)
	registry.Register(domain.SourceGoogleDrive, func(*domain.Identity, *domain.SourceCredentials) driven.SourceAdapter {
		return first
	})
	registry.Register(domain.SourceGoogleDrive, func(*domain.Identity, *domain.SourceCredentials) driven.SourceAdapter {
		return second
	})

	adapters := registry.Resolve(context.Background(), fullIdentity())
	require.Contains(t, adapters, domain.SourceGoogleDrive)
	assert.Same(t, second, adapters[domain.SourceGoogleDrive])
}
