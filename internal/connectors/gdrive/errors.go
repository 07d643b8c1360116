package gdrive

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

// mapError converts a Drive API error to the domain taxonomy. Rate
// limiting and server errors are transient; auth and missing-resource
// errors are permanent.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &domain.AdapterError{Source: domain.SourceGoogleDrive, Op: op, Transient: true, Err: err}
	}

	switch {
	case gerr.Code == http.StatusNotFound:
		return fmt.Errorf("drive: %w", domain.ErrNotFound)
	case gerr.Code == http.StatusUnauthorized, gerr.Code == http.StatusForbidden:
		return fmt.Errorf("drive: %w", domain.ErrAccessDenied)
	case gerr.Code == http.StatusTooManyRequests, gerr.Code >= 500:
		return &domain.AdapterError{Source: domain.SourceGoogleDrive, Op: op, Transient: true, Err: err}
	default:
		return &domain.AdapterError{Source: domain.SourceGoogleDrive, Op: op, Err: err}
	}
}
