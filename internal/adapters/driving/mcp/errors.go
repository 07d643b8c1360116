// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Fetcha. It lets AI assistants search, read and summarize documents across
// the connected workplace sources.
package mcp

import "errors"

// ErrMissingAggregator is returned when the aggregator service is not provided.
var ErrMissingAggregator = errors.New("mcp: aggregator service is required")

// ErrMissingIdentity is returned when the identity service is not provided.
var ErrMissingIdentity = errors.New("mcp: identity service is required")
