//go:build fuse

// Command vsfsfuse mounts a vsfs virtual disk read-only at a host
// directory using FUSE, and blocks until it is unmounted.
package main

import (
	"fmt"
	"os"

	"github.com/vdiskfs/vsfs"
	"github.com/vdiskfs/vsfs/fuse"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <disk> <mountpoint>\n", os.Args[0])
		os.Exit(2)
	}
	diskPath, mountpoint := os.Args[1], os.Args[2]

	v, err := vsfs.Mount(diskPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vsfsfuse:", err)
		os.Exit(1)
	}
	defer v.Unmount()

	if err := vsfsfuse.Mount(mountpoint, v); err != nil {
		fmt.Fprintln(os.Stderr, "vsfsfuse:", err)
		os.Exit(1)
	}
}
