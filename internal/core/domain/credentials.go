package domain

import "time"

// SourceCredentials stores a caller's token and granted scopes for one
// source. Each (source) has at most one credentials record per local user.
//
// Any OAuth exchange or token refresh is the credential provider's
// responsibility; by the time a record reaches the adapter registry the
// token is assumed usable as-is.
type SourceCredentials struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// Source is the source this token belongs to.
	Source Source `json:"source"`
	// AccessToken is the bearer token used by the source's adapter.
	AccessToken string `json:"access_token"`
	// AccountEmail is the account the token belongs to, when known.
	AccountEmail string `json:"account_email,omitempty"`
	// Scopes lists the authorization scopes granted for this source.
	Scopes []string `json:"scopes"`
	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the record was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// Usable reports whether the credentials carry a token an adapter can use.
func (c *SourceCredentials) Usable() bool {
	return c != nil && c.AccessToken != ""
}
