// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"errors"
	"fmt"
)

// Sentinel errors carried in Outcome.Err.
var (
	// ErrNotFound indicates the source answered but holds no usable record.
	ErrNotFound = errors.New("record not found")

	// ErrSourceUnavailable indicates a transport error, a non-success
	// status, a timeout, or an unparseable payload.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceAmbiguous indicates the source returned data that cannot be
	// trusted as a final answer.
	ErrSourceAmbiguous = errors.New("source ambiguous")
)

// StatusError reports a non-success HTTP status from a source.
type StatusError struct {
	Source     string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Source, e.StatusCode)
}

// Unwrap returns ErrSourceUnavailable for use with errors.Is.
func (e *StatusError) Unwrap() error {
	return ErrSourceUnavailable
}
