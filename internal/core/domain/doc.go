// Package domain defines the core business entities for Fetcha.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: One of the supported workplace document sources
//   - Identity: The authenticated caller for one logical request
//   - SearchResult, DocumentContent, RecentUpdate: Per-operation results
//   - Summary: Output of the summarization operation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
