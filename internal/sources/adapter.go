// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources implements the metadata source adapters consulted by the
// resolution cascade. Every adapter satisfies Adapter, answers with an
// Outcome, and never returns an error or panics to its caller.
package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/doi-metadata/internal/httputil"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// DefaultTimeout bounds one source call when an adapter's Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Status classifies an adapter outcome.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusUnavailable
	StatusAmbiguous
	StatusSkipped
)

// String returns the lowercase label used in logs and metrics.
func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusUnavailable:
		return "unavailable"
	case StatusAmbiguous:
		return "ambiguous"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Request is the input to one adapter call.
type Request struct {
	// DOI is the canonical identifier.
	DOI string

	// IDs holds whatever the cross-reference step found. Only the
	// literature-index adapter reads it.
	IDs types.AuxiliaryIDs
}

// Outcome is the result of one adapter call. Record is non-nil only when
// Status is StatusFound; otherwise Err explains why.
type Outcome struct {
	Status Status
	Record *types.MetadataRecord
	Err    error
}

// Found reports whether the outcome carries a usable record.
func (o Outcome) Found() bool {
	return o.Status == StatusFound && o.Record.Valid()
}

// Adapter fetches metadata from one external source.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, req Request) Outcome
}

// found wraps rec as a success. A record without a title is never a success.
func found(source string, rec types.MetadataRecord) Outcome {
	if strings.TrimSpace(rec.Title) == "" {
		return notFound(source, "record has no title")
	}
	return Outcome{Status: StatusFound, Record: &rec}
}

func notFound(source, format string, args ...any) Outcome {
	return Outcome{
		Status: StatusNotFound,
		Err:    fmt.Errorf("%s: %s: %w", source, fmt.Sprintf(format, args...), ErrNotFound),
	}
}

func ambiguous(source, format string, args ...any) Outcome {
	return Outcome{
		Status: StatusAmbiguous,
		Err:    fmt.Errorf("%s: %s: %w", source, fmt.Sprintf(format, args...), ErrSourceAmbiguous),
	}
}

func skipped(source, reason string) Outcome {
	return Outcome{Status: StatusSkipped, Err: fmt.Errorf("%s: skipped: %s", source, reason)}
}

// failure converts a transport, status, or decode error into an outcome.
func failure(source string, err error) Outcome {
	var se *httputil.StatusError
	if errors.As(err, &se) {
		return Outcome{
			Status: StatusUnavailable,
			Err:    &StatusError{Source: source, StatusCode: se.StatusCode},
		}
	}
	return Outcome{
		Status: StatusUnavailable,
		Err:    fmt.Errorf("%s: %w: %v", source, ErrSourceUnavailable, err),
	}
}

// isStatus reports whether err is an HTTP status error with the given code.
func isStatus(err error, code int) bool {
	var se *httputil.StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// guard converts a panic during Fetch into an unavailable outcome. It must be
// deferred with a pointer to the named result.
func guard(source string, out *Outcome) {
	if r := recover(); r != nil {
		*out = Outcome{
			Status: StatusUnavailable,
			Err:    fmt.Errorf("%s: %w: panic: %v", source, ErrSourceUnavailable, r),
		}
	}
}

// bounded derives a context limited by timeout, falling back to
// DefaultTimeout.
func bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// clientOrDefault returns c, or a fresh polite client when c is nil.
func clientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return httputil.NewClient(types.HTTPConfig{})
}

// joinNonEmpty joins the trimmed non-empty parts with ", ".
func joinNonEmpty(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// yearPrefix returns the part of a date string before its first '-'.
func yearPrefix(date string) string {
	date = strings.TrimSpace(date)
	if i := strings.IndexByte(date, '-'); i >= 0 {
		return date[:i]
	}
	return date
}
