package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testCreds(src domain.Source) *domain.SourceCredentials {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.SourceCredentials{
		ID:           uuid.NewString(),
		Source:       src,
		AccessToken:  "token-" + string(src),
		AccountEmail: "user@example.com",
		Scopes:       []string{src.ReadScope()},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	creds := testCreds(domain.SourceGoogleDrive)

	require.NoError(t, store.Save(context.Background(), creds))

	got, err := store.Get(context.Background(), domain.SourceGoogleDrive)
	require.NoError(t, err)
	assert.Equal(t, creds.ID, got.ID)
	assert.Equal(t, creds.AccessToken, got.AccessToken)
	assert.Equal(t, creds.AccountEmail, got.AccountEmail)
	assert.Equal(t, []string{"gdrive:read"}, got.Scopes)
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), domain.SourceNotion)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveReplacesPerSource(t *testing.T) {
	store := newTestStore(t)

	first := testCreds(domain.SourceSlack)
	require.NoError(t, store.Save(context.Background(), first))

	second := testCreds(domain.SourceSlack)
	second.AccessToken = "rotated"
	require.NoError(t, store.Save(context.Background(), second))

	got, err := store.Get(context.Background(), domain.SourceSlack)
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.AccessToken)

	all, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1, "one row per source")
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), testCreds(domain.SourceNotion)))
	require.NoError(t, store.Save(context.Background(), testCreds(domain.SourceGoogleDrive)))

	all, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Ordered by source name.
	assert.Equal(t, domain.SourceGoogleDrive, all[0].Source)
	assert.Equal(t, domain.SourceNotion, all[1].Source)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), testCreds(domain.SourceConfluence)))

	require.NoError(t, store.Delete(context.Background(), domain.SourceConfluence))

	_, err := store.Get(context.Background(), domain.SourceConfluence)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeleteMissing(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), domain.SourceSlack)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RejectsInvalidSource(t *testing.T) {
	store := newTestStore(t)

	creds := testCreds("sharepoint")
	err := store.Save(context.Background(), creds)
	assert.Error(t, err)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), testCreds(domain.SourceGoogleDrive)))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), domain.SourceGoogleDrive)
	require.NoError(t, err)
	assert.Equal(t, "token-gdrive", got.AccessToken)
}
