package domain

import "slices"

// Identity represents the authenticated caller for the duration of one
// logical request. It is immutable once constructed: owned by the request
// lifecycle, read everywhere, mutated nowhere.
type Identity struct {
	// UserID is the caller identifier. Empty means unauthenticated.
	UserID string

	// Email is the caller's email address.
	Email string

	// AccessToken is an optional bearer credential presented by the caller.
	AccessToken string

	// Scopes is the set of granted authorization scopes (e.g. "gdrive:read").
	Scopes []string
}

// Authenticated reports whether the identity represents a real caller.
func (id *Identity) Authenticated() bool {
	return id != nil && id.UserID != ""
}

// HasScope reports whether the identity holds the given scope.
func (id *Identity) HasScope(scope string) bool {
	if id == nil {
		return false
	}
	return slices.Contains(id.Scopes, scope)
}

// CanRead reports whether the identity may read the given source.
// This is the permission filter: true iff the scope set contains
// "<source>:read".
func (id *Identity) CanRead(src Source) bool {
	return id.HasScope(src.ReadScope())
}
