// Package idmap holds the UID and GID remapping tables and the parser for
// the mapping-list file.
package idmap

// Pair maps one old identifier to its replacement.
type Pair struct {
	Old uint32
	New uint32
}

// Table is an ordered sequence of pairs, queried by linear scan for the
// first matching old id. It is immutable after loading and may be read from
// any number of goroutines without synchronization.
type Table struct {
	pairs []Pair
}

// Add appends a pair unless the old id is already present. It reports
// whether the pair was added; on a duplicate the first occurrence wins.
func (t *Table) Add(old, newID uint32) bool {
	for _, p := range t.pairs {
		if p.Old == old {
			return false
		}
	}
	t.pairs = append(t.pairs, Pair{Old: old, New: newID})
	return true
}

// Lookup returns the replacement for old and whether a mapping exists.
func (t *Table) Lookup(old uint32) (uint32, bool) {
	for _, p := range t.pairs {
		if p.Old == old {
			return p.New, true
		}
	}
	return 0, false
}

// Len returns the number of pairs in the table.
func (t *Table) Len() int { return len(t.pairs) }

// Pairs returns the pairs in insertion order.
func (t *Table) Pairs() []Pair { return t.pairs }

// Tables bundles the UID and GID mapping tables loaded from one file.
type Tables struct {
	UID Table
	GID Table
}
