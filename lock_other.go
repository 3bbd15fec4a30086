//go:build !unix

package vsfs

import "os"

// flockExclusive is a no-op on platforms without flock semantics (e.g.
// plan9). WithLock still turns the mount-time intent into a call, but there
// is nothing further this platform can enforce.
func flockExclusive(f *os.File) error { return nil }

func flockRelease(f *os.File) error { return nil }
