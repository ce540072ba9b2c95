// Package filter holds the exclusion list matched against directory-entry
// basenames during the scan.
package filter

// Exclusions is an ordered collection of basenames. It is immutable after
// loading and may be read from any number of goroutines without
// synchronization.
type Exclusions struct {
	names []string
}

// NewExclusions creates an exclusion list from the given basenames,
// dropping duplicates.
func NewExclusions(names ...string) *Exclusions {
	e := &Exclusions{}
	for _, n := range names {
		e.Add(n)
	}
	return e
}

// Add appends a basename unless it is already present. It reports whether
// the name was added.
func (e *Exclusions) Add(name string) bool {
	for _, n := range e.names {
		if n == name {
			return false
		}
	}
	e.names = append(e.names, name)
	return true
}

// Match reports whether base equals any excluded name. An entry that
// matches is skipped entirely: not stat'd, not changed, not descended into.
func (e *Exclusions) Match(base string) bool {
	if e == nil {
		return false
	}
	for _, n := range e.names {
		if n == base {
			return true
		}
	}
	return false
}

// Len returns the number of excluded names.
func (e *Exclusions) Len() int {
	if e == nil {
		return 0
	}
	return len(e.names)
}
