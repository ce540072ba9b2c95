package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fritzkink/chuid/internal/event"
	"github.com/fritzkink/chuid/internal/idmap"
	"github.com/stretchr/testify/require"
)

// buildTree creates the standard fixture:
//
//	root/
//	  a/        f1, f2
//	  b/c/      f3
//	  f0
//	  link -> a/f1
//
// 3 directories, 4 regular files, 1 symlink.
func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b", "c"), 0o755))
	for _, f := range []string{"a/f1", "a/f2", "b/c/f3", "f0"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), []byte(f), 0o644))
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "a", "f1"), filepath.Join(root, "link")))

	return root
}

// selfUIDMaps returns tables remapping the current uid to itself, which any
// unprivileged owner is allowed to apply.
func selfUIDMaps(t *testing.T) *idmap.Tables {
	t.Helper()
	tables := &idmap.Tables{}
	uid := uint32(os.Getuid())
	require.True(t, tables.UID.Add(uid, uid))
	return tables
}

// selfGIDMaps returns tables remapping the current gid to itself.
func selfGIDMaps(t *testing.T) *idmap.Tables {
	t.Helper()
	tables := &idmap.Tables{}
	gid := uint32(os.Getgid())
	require.True(t, tables.GID.Add(gid, gid))
	return tables
}

// runScan executes Run with a bounded deadline and an event collector, and
// returns the result plus every event emitted.
func runScan(t *testing.T, cfg Config) (Result, []event.Event) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	events := make(chan event.Event, 256)
	cfg.Events = events

	var got []event.Event
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for ev := range events {
			got = append(got, ev)
		}
	}()

	res := Run(ctx, cfg)
	close(events)
	<-collected
	return res, got
}
