package counters

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested backend, link or entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates a counter the caller expected is not being
	// reported by the server.
	ErrUnavailable = errors.New("counter unavailable")
)

// MissingCounterError names the counter that was absent from a Set.
type MissingCounterError struct {
	DN   string
	Name string
}

func (e *MissingCounterError) Error() string {
	if e.DN == "" {
		return fmt.Sprintf("counter %q unavailable", e.Name)
	}
	return fmt.Sprintf("counter %q unavailable on %s", e.Name, e.DN)
}

func (e *MissingCounterError) Unwrap() error { return ErrUnavailable }
