package engine

import (
	"log/slog"
	"os/user"
	"strconv"
	"syscall"
	"time"

	"github.com/fritzkink/chuid/internal/event"
	"github.com/fritzkink/chuid/internal/platform"
)

// changeOwner applies the UID and GID mappings to path. The two changes are
// independent: an input table may remap UIDs and GIDs separately, so both,
// either, or neither may apply. Changes never follow symbolic links.
func (w *worker) changeOwner(path string, st *syscall.Stat_t, kind event.Kind) {
	if newUID, ok := w.cfg.Maps.UID.Lookup(st.Uid); ok {
		w.applyChange(path, kind, event.UIDChange, st.Uid, newUID)
	}
	if newGID, ok := w.cfg.Maps.GID.Lookup(st.Gid); ok {
		w.applyChange(path, kind, event.GIDChange, st.Gid, newGID)
	}
}

func (w *worker) applyChange(path string, kind event.Kind, typ event.Type, old, newID uint32) {
	if !w.cfg.DryRun {
		uid, gid := -1, -1
		if typ == event.UIDChange {
			uid = int(newID)
		} else {
			gid = int(newID)
		}
		if err := platform.Lchown(path, uid, gid); err != nil {
			slog.Warn("couldn't change ownership", "path", path, "error", err)
			w.cfg.Stats.AddWarnings(1)
			return
		}
	}

	if typ == event.UIDChange {
		w.cfg.Stats.AddUIDChanges(1)
	} else {
		w.cfg.Stats.AddGIDChanges(1)
	}

	if w.cfg.Events == nil {
		return
	}
	var oldName, newName string
	if typ == event.UIDChange {
		oldName, newName = w.names.user(old), w.names.user(newID)
	} else {
		oldName, newName = w.names.group(old), w.names.group(newID)
	}
	w.cfg.Events <- event.Event{
		Type:      typ,
		Kind:      kind,
		Path:      path,
		Old:       old,
		New:       newID,
		OldName:   oldName,
		NewName:   newName,
		WorkerID:  w.id,
		Timestamp: time.Now(),
	}
}

// nameCache memoizes user and group name lookups. Each worker owns one, so
// no locking is needed; a failed lookup falls back to the numeric id.
type nameCache struct {
	users  map[uint32]string
	groups map[uint32]string
}

func newNameCache() *nameCache {
	return &nameCache{
		users:  make(map[uint32]string),
		groups: make(map[uint32]string),
	}
}

func (c *nameCache) user(id uint32) string {
	if n, ok := c.users[id]; ok {
		return n
	}
	idStr := strconv.FormatUint(uint64(id), 10)
	name := idStr
	if u, err := user.LookupId(idStr); err == nil && u.Username != "" {
		name = u.Username
	}
	c.users[id] = name
	return name
}

func (c *nameCache) group(id uint32) string {
	if n, ok := c.groups[id]; ok {
		return n
	}
	idStr := strconv.FormatUint(uint64(id), 10)
	name := idStr
	if g, err := user.LookupGroupId(idStr); err == nil && g.Name != "" {
		name = g.Name
	}
	c.groups[id] = name
	return name
}
