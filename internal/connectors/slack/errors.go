package slack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

// mapError converts a Slack API error to the domain taxonomy. Slack's
// client surfaces most API failures as error-code strings, so code
// matching is on the message.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var rle *slack.RateLimitedError
	if errors.As(err, &rle) {
		return &domain.AdapterError{Source: domain.SourceSlack, Op: op, Transient: true, Err: err}
	}
	var sce slack.StatusCodeError
	if errors.As(err, &sce) {
		if sce.Code >= 500 || sce.Code == 429 {
			return &domain.AdapterError{Source: domain.SourceSlack, Op: op, Transient: true, Err: err}
		}
		return &domain.AdapterError{Source: domain.SourceSlack, Op: op, Err: err}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "not_found"), strings.Contains(msg, "thread_not_found"):
		return fmt.Errorf("slack: %w", domain.ErrNotFound)
	case strings.Contains(msg, "not_in_channel"),
		strings.Contains(msg, "missing_scope"),
		strings.Contains(msg, "access_denied"),
		strings.Contains(msg, "invalid_auth"),
		strings.Contains(msg, "not_authed"),
		strings.Contains(msg, "token_revoked"):
		return fmt.Errorf("slack: %w", domain.ErrAccessDenied)
	case strings.Contains(msg, "rate") && strings.Contains(msg, "limited"):
		return &domain.AdapterError{Source: domain.SourceSlack, Op: op, Transient: true, Err: err}
	default:
		return &domain.AdapterError{Source: domain.SourceSlack, Op: op, Transient: true, Err: err}
	}
}
