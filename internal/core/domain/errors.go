package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrUnauthenticated indicates the identity context is missing or
	// invalid. Surfaced immediately: no adapters invoked, no cache touched.
	ErrUnauthenticated = errors.New("caller is not authenticated")

	// ErrPermissionDenied indicates the caller lacks the read scope for a
	// source. Not fatal for multi-source operations: the source is silently
	// excluded from an otherwise successful response.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied indicates the upstream source refused access to a
	// specific document (mapped from upstream 403).
	ErrAccessDenied = errors.New("access denied")

	// ErrMalformedID indicates a composite document id without a valid
	// source delimiter. Rejected before any I/O.
	ErrMalformedID = errors.New("malformed document id")

	// ErrUnsupportedSource indicates an unknown source identifier.
	ErrUnsupportedSource = errors.New("unsupported source")
)

// AdapterError is a failure from one source adapter. Transient failures
// (network, 5xx, rate limit, timeout) are retried by the adapter's own
// policy; the aggregator excludes both transient and permanent adapter
// failures from the aggregate result without failing the operation.
type AdapterError struct {
	// Source is the source whose adapter failed.
	Source Source
	// Op is the operation that failed ("search", "document", "updates").
	Op string
	// Transient indicates the failure may succeed on retry.
	Transient bool
	// Err is the underlying cause.
	Err error
}

func (e *AdapterError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s %s: %s adapter error: %v", e.Source, e.Op, kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AdapterError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether the error is a transient adapter failure.
func IsTransient(err error) bool {
	var ae *AdapterError
	if errors.As(err, &ae) {
		return ae.Transient
	}
	return false
}

// SourceFailure records a per-source failure during a fan-out.
// Partial failure is a first-class, inspectable outcome: multi-source
// operations collect these instead of aborting.
type SourceFailure struct {
	// Source is the failed source.
	Source Source
	// Err is the failure.
	Err error
}

func (f SourceFailure) String() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}
