package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fritzkink/chuid/internal/dispatch"
	"github.com/fritzkink/chuid/internal/stats"
)

// Reporter periodically prints a progress line built from the stats
// counters and a dispatcher snapshot. Counter reads are unsynchronized by
// design; the table is a heuristic view of a moving scan.
type Reporter struct {
	Interval   time.Duration
	Stats      *stats.Collector
	Dispatcher *dispatch.Dispatcher
	TwoPool    bool
	W          io.Writer
}

// Run prints the header and then one line per interval until stop is
// closed.
func (r *Reporter) Run(stop <-chan struct{}) {
	if r.TwoPool {
		fmt.Fprintf(r.W, "\nThreads busy      files   files/s directories/s links/s elements fast-q Speed slow-q Speed\n\n")
	} else {
		fmt.Fprintf(r.W, "\nThreads busy      files   files/s directories/s links/s queue elements\n\n")
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	prev := r.Stats.Snapshot()
	for {
		select {
		case <-stop:
			fmt.Fprintln(r.W)
			return
		case <-ticker.C:
			cur := r.Stats.Snapshot()
			r.printLine(prev, cur)
			prev = cur
		}
	}
}

func (r *Reporter) printLine(prev, cur stats.Snapshot) {
	secs := r.Interval.Seconds()
	fileRate := float64(cur.Files-prev.Files) / secs
	dirRate := float64(cur.Dirs-prev.Dirs) / secs
	linkRate := float64(cur.Links-prev.Links) / secs

	ds := r.Dispatcher.Stats()
	if r.TwoPool {
		fmt.Fprintf(r.W, "%7d %4d %10d %7.0f %13.0f %7.0f %15d %5.1f %6d %5.1f\n",
			r.Dispatcher.Workers(), ds.Busy, cur.Files, fileRate, dirRate, linkRate,
			ds.FastLen, ds.FastSpeed, ds.SlowLen, ds.SlowSpeed)
	} else {
		fmt.Fprintf(r.W, "%7d %4d %10d %7.0f %13.0f %7.0f %14d\n",
			r.Dispatcher.Workers(), ds.Busy, cur.Files, fileRate, dirRate, linkRate,
			ds.FastLen)
	}
}
