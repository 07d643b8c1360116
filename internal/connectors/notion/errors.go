package notion

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

// mapError converts a Notion API error to the domain taxonomy.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var nerr *notionapi.Error
	if !errors.As(err, &nerr) {
		return &domain.AdapterError{Source: domain.SourceNotion, Op: op, Transient: true, Err: err}
	}

	switch {
	case nerr.Status == http.StatusNotFound:
		return fmt.Errorf("notion: %w", domain.ErrNotFound)
	case nerr.Status == http.StatusUnauthorized, nerr.Status == http.StatusForbidden:
		return fmt.Errorf("notion: %w", domain.ErrAccessDenied)
	case nerr.Status == http.StatusTooManyRequests, nerr.Status >= 500:
		return &domain.AdapterError{Source: domain.SourceNotion, Op: op, Transient: true, Err: err}
	default:
		return &domain.AdapterError{Source: domain.SourceNotion, Op: op, Err: err}
	}
}
