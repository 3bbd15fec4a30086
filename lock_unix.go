//go:build unix

package vsfs

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// flockExclusive takes a non-blocking advisory exclusive lock on f, failing
// immediately (rather than blocking) if another process already holds one.
// This is how WithLock turns concurrent Mount from "undefined behavior"
// (spec.md §5) into a clean error.
func flockExclusive(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return fmt.Errorf("vsfs: lock container: %w", err)
	}
	return nil
}

func flockRelease(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("vsfs: unlock container: %w", err)
	}
	return nil
}
