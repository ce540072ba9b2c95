// Package stats tracks scan statistics using lock-free atomic counters.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector accumulates per-entry counters across all workers.
type Collector struct {
	files      atomic.Int64
	dirs       atomic.Int64
	links      atomic.Int64
	others     atomic.Int64
	uidChanges atomic.Int64
	gidChanges atomic.Int64
	handovers  atomic.Int64
	warnings   atomic.Int64
	startTime  time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddFiles(n int64)      { c.files.Add(n) }
func (c *Collector) AddDirs(n int64)       { c.dirs.Add(n) }
func (c *Collector) AddLinks(n int64)      { c.links.Add(n) }
func (c *Collector) AddOthers(n int64)     { c.others.Add(n) }
func (c *Collector) AddUIDChanges(n int64) { c.uidChanges.Add(n) }
func (c *Collector) AddGIDChanges(n int64) { c.gidChanges.Add(n) }
func (c *Collector) AddHandovers(n int64)  { c.handovers.Add(n) }
func (c *Collector) AddWarnings(n int64)   { c.warnings.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	Files      int64
	Dirs       int64
	Links      int64
	Others     int64
	UIDChanges int64
	GIDChanges int64
	Handovers  int64
	Warnings   int64
	Elapsed    time.Duration
}

// Snapshot reads all counters. Each counter is loaded atomically, but the
// counters are loaded one after another, not as one atomic step.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Files:      c.files.Load(),
		Dirs:       c.dirs.Load(),
		Links:      c.links.Load(),
		Others:     c.others.Load(),
		UIDChanges: c.uidChanges.Load(),
		GIDChanges: c.gidChanges.Load(),
		Handovers:  c.handovers.Load(),
		Warnings:   c.warnings.Load(),
		Elapsed:    c.Elapsed(),
	}
}

// Elapsed returns the time since the collector was created.
func (c *Collector) Elapsed() time.Duration {
	if c.startTime.IsZero() {
		return 0
	}
	return time.Since(c.startTime)
}

// String renders a one-line summary.
func (s Snapshot) String() string {
	return fmt.Sprintf("files=%d dirs=%d links=%d others=%d uid_changes=%d gid_changes=%d warnings=%d",
		s.Files, s.Dirs, s.Links, s.Others, s.UIDChanges, s.GIDChanges, s.Warnings)
}
