package counters

import (
	"fmt"
	"strconv"
	"strings"
)

// Counter is one named counter with the values the server reported for it.
type Counter struct {
	Name   string
	Values []string
}

// Set is a snapshot of counters read from a single monitor entry. Counters
// keep the order in which the server delivered them; lookups by name are
// case-insensitive, as LDAP attribute names are.
type Set struct {
	DN string

	counters []Counter
	index    map[string]int
}

// NewSet creates an empty Set for the entry at dn.
func NewSet(dn string) *Set {
	return &Set{DN: dn, index: make(map[string]int)}
}

// Add appends values to the named counter, creating it at the end of the
// delivery order if it has not been seen yet.
func (s *Set) Add(name string, values ...string) {
	key := strings.ToLower(name)
	if i, ok := s.index[key]; ok {
		s.counters[i].Values = append(s.counters[i].Values, values...)
		return
	}
	s.index[key] = len(s.counters)
	s.counters = append(s.counters, Counter{Name: name, Values: append([]string(nil), values...)})
}

// Len returns the number of distinct counters.
func (s *Set) Len() int { return len(s.counters) }

// Counters returns the counters in delivery order.
func (s *Set) Counters() []Counter {
	out := make([]Counter, len(s.counters))
	copy(out, s.counters)
	return out
}

// Has reports whether the named counter is present with at least one value.
func (s *Set) Has(name string) bool {
	return len(s.Values(name)) > 0
}

// Values returns every value of the named counter, or nil.
func (s *Set) Values(name string) []string {
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return s.counters[i].Values
}

// First returns the first value of the named counter.
func (s *Set) First(name string) (string, bool) {
	v := s.Values(name)
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// String is First, failing with a *MissingCounterError when absent.
func (s *Set) String(name string) (string, error) {
	v, ok := s.First(name)
	if !ok {
		return "", &MissingCounterError{DN: s.DN, Name: name}
	}
	return v, nil
}

// Int parses the first value of the named counter as a base-10 integer.
func (s *Set) Int(name string) (int64, error) {
	v, err := s.String(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %q: %w", name, err)
	}
	return n, nil
}

// Filter returns a new Set holding only the named counters, in this Set's
// delivery order.
func (s *Set) Filter(names ...string) *Set {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[strings.ToLower(n)] = true
	}
	out := NewSet(s.DN)
	for _, c := range s.counters {
		if keep[strings.ToLower(c.Name)] {
			out.Add(c.Name, c.Values...)
		}
	}
	return out
}
