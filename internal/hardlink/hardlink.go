// Package hardlink tracks which multiply-linked inodes have already been
// visited, so each underlying file is owner-changed at most once per scan.
package hardlink

import (
	"sync"
	"sync/atomic"
)

// Key uniquely identifies an inode across all scanned filesystems.
type Key struct {
	Dev uint64
	Ino uint64
}

// Set is a concurrency-safe set of (device, inode) pairs. The zero value is
// ready to use.
type Set struct {
	m    sync.Map // Key -> struct{}
	size atomic.Int64
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{}
}

// Mark records the pair and reports whether it was fresh. A given pair
// transitions absent -> present exactly once across the entire scan, no
// matter how many workers race on it.
func (s *Set) Mark(dev, ino uint64) bool {
	_, seen := s.m.LoadOrStore(Key{Dev: dev, Ino: ino}, struct{}{})
	if !seen {
		s.size.Add(1)
	}
	return !seen
}

// Len returns the number of distinct pairs marked so far.
func (s *Set) Len() int64 {
	return s.size.Load()
}
