//go:build darwin

package engine

import (
	"io/fs"
	"syscall"
)

// statOf extracts the raw stat buffer from an Lstat result.
func statOf(info fs.FileInfo) *syscall.Stat_t {
	return info.Sys().(*syscall.Stat_t)
}

// devInoOf returns the (device, inode) pair identifying the underlying
// inode.
func devInoOf(st *syscall.Stat_t) (uint64, uint64) {
	return uint64(st.Dev), st.Ino
}

// nlinkOf returns the hardlink count.
func nlinkOf(st *syscall.Stat_t) uint64 {
	return uint64(st.Nlink)
}
