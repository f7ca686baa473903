package radar

import (
	"errors"
	"fmt"
)

// Fatal pipeline errors. Everything else degrades gracefully.
var (
	ErrInvalidRequest     = errors.New("invalid radar request")
	ErrSubjectUnavailable = errors.New("subject site could not be scraped")
	ErrNoCompetitors      = errors.New("no competitor site could be scraped")
)

// FetchErrorKind classifies fetch failures.
type FetchErrorKind string

// Fetch failure kinds.
const (
	FetchStatus  FetchErrorKind = "status"
	FetchTimeout FetchErrorKind = "timeout"
	FetchNetwork FetchErrorKind = "network"
)

// FetchError is returned by fetchers for non-2xx responses, timeouts and
// network failures.
type FetchError struct {
	URL        string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchErrorLabel returns a metrics-friendly label for err.
func FetchErrorLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return string(fetchErr.Kind)
	}
	return "other"
}
