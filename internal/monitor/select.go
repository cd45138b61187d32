package monitor

import (
	"fmt"
	"strings"

	"github.com/revittco/dsmon/internal/counters"
)

// SelectionError reports a backend filter that matched nothing.
type SelectionError struct {
	Filter string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("could not find any backends from the provided list: %s", e.Filter)
}

func (e *SelectionError) Unwrap() error { return counters.ErrNotFound }

// SelectBackends returns the backends named by filter, a space separated
// list of backend names or suffixes (tokens containing "=" are suffixes).
// Matching is case-insensitive and the result keeps the order of all. An
// empty filter selects every backend.
func SelectBackends(all []counters.Backend, filter string) ([]counters.Backend, error) {
	tokens := strings.Fields(strings.ToLower(filter))
	if len(tokens) == 0 {
		return all, nil
	}

	var out []counters.Backend
	for _, be := range all {
		if matchesAny(be, tokens) {
			out = append(out, be)
		}
	}
	if len(out) == 0 {
		return nil, &SelectionError{Filter: filter}
	}
	return out, nil
}

func matchesAny(be counters.Backend, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(tok, "=") {
			if tok == strings.ToLower(be.Suffix) {
				return true
			}
			continue
		}
		if tok == strings.ToLower(be.Name) {
			return true
		}
	}
	return false
}

// FindBackend returns the backend whose name equals name, ignoring case.
func FindBackend(all []counters.Backend, name string) (counters.Backend, error) {
	for _, be := range all {
		if strings.EqualFold(be.Name, name) {
			return be, nil
		}
	}
	return counters.Backend{}, fmt.Errorf("backend %q: %w", name, counters.ErrNotFound)
}
