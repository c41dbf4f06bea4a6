// Package apperr defines the error taxonomy shared by the query
// service, the analytics recorder, and the HTTP layer. Sentinels are
// matched with errors.Is after the usual %w wrapping.
package apperr

import "errors"

var (
	// ErrNotFound marks a missing entity or an empty result set.
	// Terminal; surfaced to the caller with a descriptive message.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed input. Surfaced immediately,
	// never retried.
	ErrValidation = errors.New("validation failed")
)
