// Package dispatch coordinates the global work pools the traversal workers
// feed from: two double-ended pools differentiated by observed processing
// speed, a busy-worker count, and the termination protocol.
package dispatch

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/fritzkink/chuid/internal/deq"
)

// Config controls dispatcher behavior.
type Config struct {
	Workers       int
	BusyThreshold float64 // handover fires when busy/workers drops below this
	SinglePool    bool    // disable the fast/slow split
	Queue         bool    // splice handovers to the back (breadth-first) instead of the front
}

// Dispatcher owns the two global pools. All pool state is guarded by one
// mutex; busy is additionally an atomic so the idleness probe and the
// progress reporter can read it without taking the lock.
type Dispatcher struct {
	cfg  Config
	mu   sync.Mutex
	cond *sync.Cond

	fast       *deq.Pool
	slow       *deq.Pool
	fastBudget int64

	busy atomic.Int64
	done atomic.Bool
}

// New creates a dispatcher with empty pools.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		cfg:  cfg,
		fast: deq.New(),
		slow: deq.New(),
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Workers returns the configured worker count.
func (d *Dispatcher) Workers() int { return d.cfg.Workers }

// Seed appends a subtree root to the fast pool. Called before workers start.
func (d *Dispatcher) Seed(desc *deq.Descriptor) {
	d.mu.Lock()
	d.fast.PushBack(desc)
	d.mu.Unlock()
}

// Acquire blocks until a subtree descriptor is available or the scan is
// declared complete. It returns nil exactly when the caller should exit.
// A successful acquisition counts the caller as busy until the matching
// Release.
func (d *Dispatcher) Acquire() *deq.Descriptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		for d.fast.Len() == 0 && d.slow.Len() == 0 && !d.done.Load() {
			d.cond.Wait()
		}
		if d.done.Load() {
			return nil
		}
		if r := d.extract(); r != nil {
			d.busy.Add(1)
			return r
		}
	}
}

// Release ends the walk started by the matching Acquire. The caller that
// observes busy == 0 with both pools empty declares completion and wakes
// every waiter.
func (d *Dispatcher) Release() {
	d.mu.Lock()
	d.busy.Add(-1)
	if d.busy.Load() == 0 && d.fast.Len() == 0 && d.slow.Len() == 0 && !d.done.Load() {
		d.done.Store(true)
		d.cond.Broadcast()
	}
	d.mu.Unlock()
}

// Handover splices a worker's private backlog into a global pool. In
// two-pool mode the backlog goes to the fast pool when the worker's observed
// speed is at least the average of the two pool speeds, otherwise to the
// slow pool; the chosen pool adopts the observed speed. One waiter is
// signalled per spliced descriptor.
func (d *Dispatcher) Handover(backlog *deq.Pool, speed float64) {
	n := backlog.Len()
	d.mu.Lock()
	switch {
	case d.cfg.SinglePool:
		d.splice(d.fast, backlog)
	case speed >= (d.fast.Speed()+d.slow.Speed())/2:
		d.splice(d.fast, backlog)
		d.fast.SetSpeed(speed)
	default:
		d.splice(d.slow, backlog)
		d.slow.SetSpeed(speed)
	}
	d.mu.Unlock()
	for i := 0; i < n; i++ {
		d.cond.Signal()
	}
}

// Shutdown declares completion regardless of remaining work. Workers finish
// their current walk and exit; descriptors still pooled are abandoned.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if !d.done.Load() {
		d.done.Store(true)
		d.cond.Broadcast()
	}
	d.mu.Unlock()
}

// Done reports whether completion has been declared.
func (d *Dispatcher) Done() bool { return d.done.Load() }

// Busy returns the number of workers currently inside a walk. The read is
// unsynchronized; callers use it as a heuristic only.
func (d *Dispatcher) Busy() int64 { return d.busy.Load() }

// TooManyIdle reports whether the ratio of busy workers has dropped below
// the configured threshold. Staleness is bounded by one walk step and does
// not affect correctness.
func (d *Dispatcher) TooManyIdle() bool {
	return float64(d.busy.Load())/float64(d.cfg.Workers) < d.cfg.BusyThreshold
}

// Snapshot is a point-in-time view of the pools for progress reporting.
type Snapshot struct {
	FastLen   int
	SlowLen   int
	FastSpeed float64
	SlowSpeed float64
	Busy      int64
}

// Stats returns a consistent snapshot of pool sizes and speeds.
func (d *Dispatcher) Stats() Snapshot {
	d.mu.Lock()
	s := Snapshot{
		FastLen:   d.fast.Len(),
		SlowLen:   d.slow.Len(),
		FastSpeed: d.fast.Speed(),
		SlowSpeed: d.slow.Speed(),
	}
	d.mu.Unlock()
	s.Busy = d.busy.Load()
	return s
}

// extract removes one descriptor, interleaving the two pools so that the
// faster one contributes proportionally more. Callers hold d.mu.
func (d *Dispatcher) extract() *deq.Descriptor {
	if d.cfg.SinglePool {
		return d.fast.PopFront()
	}

	var r *deq.Descriptor
	if d.fastBudget > 0 {
		if r = d.fast.PopFront(); r != nil {
			d.fastBudget--
		} else if r = d.slow.PopFront(); r != nil {
			d.fastBudget = budget(d.fast.Speed(), d.slow.Speed())
		}
	} else {
		if r = d.slow.PopFront(); r != nil {
			d.fastBudget = budget(d.fast.Speed(), d.slow.Speed())
		} else {
			r = d.fast.PopFront()
		}
	}

	// Keep the speeds meaningful as pools drain: an emptied pool inherits
	// the other's speed so the next handover compares against a live
	// baseline; once both are empty the baselines start over.
	switch {
	case d.fast.Len() == 0 && d.slow.Len() == 0:
		d.fast.SetSpeed(0)
		d.slow.SetSpeed(0)
	case d.fast.Len() == 0:
		d.fast.SetSpeed(d.slow.Speed())
	case d.slow.Len() == 0:
		d.slow.SetSpeed(d.fast.Speed())
	}
	return r
}

// budget returns how many descriptors to take from the fast pool before the
// next slow extraction. A zero slow speed yields 1.
func budget(fast, slow float64) int64 {
	if slow == 0 {
		return 1
	}
	return int64(math.Ceil(fast / slow))
}

func (d *Dispatcher) splice(dst, src *deq.Pool) {
	if d.cfg.Queue {
		dst.SpliceBack(src)
	} else {
		dst.SpliceFront(src)
	}
}
