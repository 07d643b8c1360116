package mcp

import (
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Aggregator serves search, document and summary requests.
	Aggregator driving.AggregatorService

	// Identity resolves the caller for each tool invocation.
	Identity driving.IdentityService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Aggregator == nil {
		return ErrMissingAggregator
	}
	if p.Identity == nil {
		return ErrMissingIdentity
	}
	return nil
}
