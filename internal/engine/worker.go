package engine

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fritzkink/chuid/internal/deq"
	"github.com/fritzkink/chuid/internal/dispatch"
	"github.com/fritzkink/chuid/internal/event"
	"github.com/fritzkink/chuid/internal/hardlink"
)

// readBatch is how many directory entries are pulled from the stream at a
// time. The idleness probe runs after every entry regardless.
const readBatch = 128

// worker owns a private pool and repeatedly walks subtrees extracted from
// the global pools until the dispatcher declares completion.
type worker struct {
	id    int
	cfg   *Config
	d     *dispatch.Dispatcher
	seen  *hardlink.Set
	names *nameCache

	// stopwatch anchor and directory count since the last global
	// extraction, for the handover speed estimate
	anchor  time.Time
	scanned int
}

func (w *worker) run() {
	for {
		r := w.d.Acquire()
		if r == nil {
			return
		}
		w.anchor = time.Now()
		w.scanned = 0
		w.walk(r)
		w.d.Release()
	}
}

// walk processes the subtree rooted at r using a private pool: depth-first
// when children are prepended (stack mode), breadth-first when appended.
func (w *worker) walk(r *deq.Descriptor) {
	priv := deq.New()
	priv.PushFront(r)
	for priv.Len() > 0 {
		wd := priv.PopFront()
		if !w.cfg.SinglePool {
			w.scanned++
		}
		w.processDir(wd, priv)
	}
}

// processDir iterates the entries of wd, resuming from its cursor if the
// directory was deferred by an earlier handover. A failed open is logged
// and the descriptor dropped, never retried.
func (w *worker) processDir(wd *deq.Descriptor, priv *deq.Pool) {
	f, err := os.Open(wd.Path)
	if err != nil {
		slog.Warn("couldn't open directory", "path", wd.Path, "error", err)
		w.cfg.Stats.AddWarnings(1)
		return
	}

	consumed := wd.Resume
	if consumed > 0 {
		if err := skipEntries(f, consumed); err != nil {
			slog.Warn("couldn't resume directory", "path", wd.Path, "error", err)
			w.cfg.Stats.AddWarnings(1)
			f.Close()
			return
		}
	}

	deferred := false
read:
	for {
		batch, err := f.ReadDir(readBatch)
		for i, ent := range batch {
			w.processEntry(wd, ent, priv)
			consumed++

			if w.d.TooManyIdle() {
				// Record the cursor and requeue wd only if entries remain
				// past the current position.
				wd.Resume = consumed
				remaining := i+1 < len(batch)
				if !remaining {
					peek, _ := f.ReadDir(1)
					remaining = len(peek) > 0
				}
				if remaining {
					priv.PushBack(wd)
				}
				deferred = true
				break read
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("readdir failed", "path", wd.Path, "error", err)
			w.cfg.Stats.AddWarnings(1)
			break
		}
	}

	if err := f.Close(); err != nil {
		slog.Warn("couldn't close directory", "path", wd.Path, "error", err)
	}

	if deferred && priv.Len() > 1 {
		w.handover(priv)
	}
}

// handover moves everything but the first private descriptor to a global
// pool so idle workers get work, then continues with the kept one.
func (w *worker) handover(priv *deq.Pool) {
	speed := float64(w.scanned)
	if elapsed := time.Since(w.anchor).Seconds(); elapsed > 0 {
		speed = float64(w.scanned) / elapsed
	}

	slog.Info("too many idle workers detected",
		"idle", int64(w.d.Workers())-w.d.Busy(), "worker", w.id)

	keep := priv.PopFront()
	w.d.Handover(priv, speed)
	priv.PushBack(keep)

	w.cfg.Stats.AddHandovers(1)
}

// processEntry classifies one directory entry and applies the ownership
// mapping to it.
func (w *worker) processEntry(wd *deq.Descriptor, ent os.DirEntry, priv *deq.Pool) {
	name := ent.Name()
	if w.cfg.Exclude.Match(name) {
		return
	}

	path := filepath.Join(wd.Path, name)
	info, err := os.Lstat(path)
	if err != nil {
		slog.Warn("couldn't stat", "path", path, "error", err)
		w.cfg.Stats.AddWarnings(1)
		return
	}
	st := statOf(info)
	mode := info.Mode()

	switch {
	case mode.IsRegular():
		if nlinkOf(st) > 1 {
			dev, ino := devInoOf(st)
			if !w.seen.Mark(dev, ino) {
				return
			}
		}
		w.changeOwner(path, st, event.File)
		w.cfg.Stats.AddFiles(1)

	case mode&os.ModeSymlink != 0:
		w.changeOwner(path, st, event.Symlink)
		w.cfg.Stats.AddLinks(1)

	case mode.IsDir():
		w.changeOwner(path, st, event.Directory)
		child := &deq.Descriptor{Path: path, Root: wd.Root}
		if w.cfg.Queue {
			priv.PushBack(child)
		} else {
			priv.PushFront(child)
		}
		w.cfg.Stats.AddDirs(1)

	default:
		w.cfg.Stats.AddOthers(1)
	}
}

// skipEntries advances the directory stream past the first n entries.
// Running out of entries early is not an error; the directory simply has
// nothing left to resume.
func skipEntries(f *os.File, n int) error {
	for n > 0 {
		chunk := min(n, readBatch)
		names, err := f.Readdirnames(chunk)
		n -= len(names)
		if err == io.EOF || len(names) == 0 {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}
