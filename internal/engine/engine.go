// Package engine implements the parallel traversal: a fixed pool of workers
// pulling subtree roots from the global dispatcher pools, walking them, and
// rewriting ownership along the way.
package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fritzkink/chuid/internal/deq"
	"github.com/fritzkink/chuid/internal/dispatch"
	"github.com/fritzkink/chuid/internal/event"
	"github.com/fritzkink/chuid/internal/filter"
	"github.com/fritzkink/chuid/internal/hardlink"
	"github.com/fritzkink/chuid/internal/idmap"
	"github.com/fritzkink/chuid/internal/stats"
	"github.com/fritzkink/chuid/internal/ui"
)

// Config describes a scan.
type Config struct {
	Roots         []string
	Maps          *idmap.Tables
	Exclude       *filter.Exclusions
	Workers       int
	BusyThreshold float64
	SinglePool    bool // one global pool instead of the fast/slow split
	Queue         bool // breadth-first private pool (FIFO) instead of depth-first
	DryRun        bool
	Interval      time.Duration // progress-print interval; 0 disables the reporter
	Events        chan<- event.Event
	Stats         *stats.Collector
	ProgressW     io.Writer
}

// Result is the outcome of a scan.
type Result struct {
	Stats       stats.Snapshot
	Interrupted bool
	Err         error
}

// Run executes a scan, blocking until every seeded subtree has been walked
// or ctx is cancelled. Roots that fail to stat are logged and skipped; a
// scan with no valid roots fails outright.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Maps == nil {
		cfg.Maps = &idmap.Tables{}
	}
	if cfg.ProgressW == nil {
		cfg.ProgressW = os.Stdout
	}

	d := dispatch.New(dispatch.Config{
		Workers:       cfg.Workers,
		BusyThreshold: cfg.BusyThreshold,
		SinglePool:    cfg.SinglePool,
		Queue:         cfg.Queue,
	})

	seeded := 0
	for _, root := range cfg.Roots {
		if _, err := os.Lstat(root); err != nil {
			slog.Warn("couldn't stat root, skipping", "path", root, "error", err)
			cfg.Stats.AddWarnings(1)
			continue
		}
		d.Seed(&deq.Descriptor{Path: root, Root: root})
		seeded++
	}
	if seeded == 0 {
		return Result{Err: errors.New("no valid filesystem roots to work on")}
	}

	// Cancellation only declares completion; workers finish the walk they
	// are in and drain out through the normal exit path.
	stopWatch := context.AfterFunc(ctx, d.Shutdown)
	defer stopWatch()

	var stopReporter chan struct{}
	var reporterDone sync.WaitGroup
	if cfg.Interval > 0 {
		rep := &ui.Reporter{
			Interval:   cfg.Interval,
			Stats:      cfg.Stats,
			Dispatcher: d,
			TwoPool:    !cfg.SinglePool,
			W:          cfg.ProgressW,
		}
		stopReporter = make(chan struct{})
		reporterDone.Add(1)
		go func() {
			defer reporterDone.Done()
			rep.Run(stopReporter)
		}()
	}

	seen := hardlink.NewSet()
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		w := &worker{
			id:    i,
			cfg:   &cfg,
			d:     d,
			seen:  seen,
			names: newNameCache(),
		}
		go func() {
			defer wg.Done()
			w.run()
		}()
	}
	wg.Wait()

	if stopReporter != nil {
		close(stopReporter)
		reporterDone.Wait()
	}

	return Result{
		Stats:       cfg.Stats.Snapshot(),
		Interrupted: ctx.Err() != nil,
	}
}
