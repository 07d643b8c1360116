package driven

import (
	"context"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

// CredentialsStore persists per-source tokens and granted scopes for the
// local user. Backed by SQLite.
type CredentialsStore interface {
	// Save stores or replaces the credentials for a source.
	Save(ctx context.Context, creds *domain.SourceCredentials) error

	// Get retrieves the credentials for a source.
	// Returns domain.ErrNotFound if none are stored.
	Get(ctx context.Context, source domain.Source) (*domain.SourceCredentials, error)

	// List returns all stored credentials.
	List(ctx context.Context) ([]domain.SourceCredentials, error)

	// Delete removes the credentials for a source.
	Delete(ctx context.Context, source domain.Source) error

	// Close releases resources.
	Close() error
}
