package confluence

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

// APIError is a non-200 response from the Confluence API.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("confluence: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// mapError converts a Confluence API error to the domain taxonomy.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return &domain.AdapterError{Source: domain.SourceConfluence, Op: op, Transient: true, Err: err}
	}

	switch {
	case apiErr.StatusCode == http.StatusNotFound:
		return fmt.Errorf("confluence: %w", domain.ErrNotFound)
	case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
		return fmt.Errorf("confluence: %w", domain.ErrAccessDenied)
	case apiErr.StatusCode == http.StatusTooManyRequests, apiErr.StatusCode >= 500:
		return &domain.AdapterError{Source: domain.SourceConfluence, Op: op, Transient: true, Err: err}
	default:
		return &domain.AdapterError{Source: domain.SourceConfluence, Op: op, Err: err}
	}
}
