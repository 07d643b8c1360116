// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceAdapter: Search / fetch / recent-updates for one source
//   - AdapterRegistry: Resolves adapters for an identity
//   - Cache: TTL-bounded result memoization
//   - Summarizer: Synthesizes a summary from fetched documents
//   - CredentialsStore: Per-source token persistence
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
