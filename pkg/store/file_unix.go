//go:build unix

package store

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileAccess reports how a borrowed file handle was opened. The handle's
// own access mode overrides the mode requested from the store.
func fileAccess(f *os.File) (readable, writable bool) {
	flags, err := unix.FcntlInt(f.Fd(), unix.F_GETFL, 0)
	if err != nil {
		// Assume the requested mode holds when the platform cannot say.
		return true, true
	}
	switch flags & unix.O_ACCMODE {
	case unix.O_RDONLY:
		return true, false
	case unix.O_WRONLY:
		return false, true
	}
	return true, true
}
