// Package event carries per-entry change notifications from the workers to
// the presenter: dry-run lines on stdout, change lines in the log.
package event

import (
	"fmt"
	"time"
)

// Type identifies the kind of event.
type Type int

const (
	UIDChange Type = iota + 1
	GIDChange
)

func (t Type) String() string {
	switch t {
	case UIDChange:
		return "uid"
	case GIDChange:
		return "gid"
	}
	return "unknown"
}

// Kind classifies the filesystem entry the change applies to.
type Kind int

const (
	File Kind = iota
	Directory
	Symlink
)

var kindNames = [...]string{
	File:      "FILE",
	Directory: "DIRECTORY",
	Symlink:   "SYMLINK",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Event describes one applied (or, in dry-run mode, intended) ownership
// change.
type Event struct {
	Type      Type
	Kind      Kind
	Path      string
	Old       uint32
	New       uint32
	OldName   string
	NewName   string
	WorkerID  int
	Timestamp time.Time
}

// ChangeLine renders the event as the canonical change sentence.
func (e Event) ChangeLine() string {
	return fmt.Sprintf("%s (%s): %d (%s), %s will be changed to %d (%s)",
		e.Path, e.Kind, e.Old, e.OldName, e.Type, e.New, e.NewName)
}
