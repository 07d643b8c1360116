// Package connectors provides the source adapter implementations for the
// supported workplace sources. Each subpackage (gdrive, notion, slack,
// confluence) implements driven.SourceAdapter for one source; this package
// holds the plumbing they share: retry with exponential backoff and
// upstream rate limiting.
//
// Adapters are registered with the AdapterRegistry at startup.
package connectors
