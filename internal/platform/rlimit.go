//go:build unix

// Package platform isolates the OS-specific pieces of the scan: file
// descriptor limits and ownership syscalls.
package platform

import (
	"golang.org/x/sys/unix"
)

// OpenFilesOffset is the number of descriptors reserved for the log file,
// the standard streams and incidental opens; the worker count is clamped so
// that at least this many remain free.
const OpenFilesOffset = 5

// RaiseFileLimit lifts the soft RLIMIT_NOFILE to the hard limit and returns
// the resulting soft limit. Errors are returned with the best-known current
// limit so callers can still clamp against it.
func RaiseFileLimit() (uint64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 1024, err
	}
	if lim.Cur < lim.Max {
		raised := lim
		raised.Cur = lim.Max
		if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &raised); err != nil {
			return lim.Cur, nil // keep the unraised limit, not an error
		}
		return raised.Cur, nil
	}
	return lim.Cur, nil
}

// MaxOpenFiles returns the current soft RLIMIT_NOFILE.
func MaxOpenFiles() uint64 {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 1024
	}
	return lim.Cur
}

// Lchown changes ownership of path without following symbolic links. An id
// of -1 leaves that id unchanged.
func Lchown(path string, uid, gid int) error {
	return unix.Lchown(path, uid, gid)
}
