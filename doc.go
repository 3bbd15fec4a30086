// Package vsfs implements a small single-volume file system on top of a
// host-provided flat byte container (the "virtual disk").
//
// Files are stored as linked chains of fixed-size blocks tracked by a File
// Allocation Table (FAT) and located through a single flat root directory.
// There are no subdirectories, no rename, no random writes and no seeking:
// files are created, appended to sequentially, read sequentially from the
// start, and deleted.
//
// Typical use:
//
//	if err := vsfs.Format(path, 20); err != nil { ... }
//	v, err := vsfs.Mount(path)
//	...
//	defer v.Unmount()
//	if err := v.Create("hello.txt"); err != nil { ... }
//	fd, err := v.Open("hello.txt", vsfs.ModeAppend)
//	v.Append(fd, []byte("hi"), 2)
//	v.Close(fd)
package vsfs
