package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driving"
)

var _ driving.IdentityService = (*LocalIdentity)(nil)

// LocalIdentity derives the caller identity from local state: the user
// profile comes from config, the scopes from the credential grants on
// record. A caller holds source:read exactly when a usable credential
// for that source is stored.
type LocalIdentity struct {
	config driven.ConfigStore
	creds  driven.CredentialsStore
}

// NewLocalIdentity creates an identity service backed by the config and
// credentials stores.
func NewLocalIdentity(config driven.ConfigStore, creds driven.CredentialsStore) *LocalIdentity {
	return &LocalIdentity{config: config, creds: creds}
}

// Current returns the caller identity. An empty profile yields an
// unauthenticated identity rather than an error; operations reject it
// with domain.ErrUnauthenticated at their own boundary.
func (s *LocalIdentity) Current(ctx context.Context) (*domain.Identity, error) {
	identity := &domain.Identity{
		UserID: s.config.GetString("user.id"),
		Email:  s.config.GetString("user.email"),
	}
	if identity.UserID == "" {
		return identity, nil
	}

	stored, err := s.creds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	for _, c := range stored {
		if !c.Usable() {
			continue
		}
		scope := c.Source.ReadScope()
		if !identity.HasScope(scope) {
			identity.Scopes = append(identity.Scopes, scope)
		}
	}
	return identity, nil
}
