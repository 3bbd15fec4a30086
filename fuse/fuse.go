//go:build fuse

// Package vsfsfuse exposes a mounted vsfs.Volume as a read-only FUSE
// filesystem: a single flat directory whose entries are the volume's
// files. Grounded in the teacher's inode_fuse.go, rewritten against the
// higher-level github.com/hanwen/go-fuse/v2/fs node API (InodeEmbedder)
// rather than the teacher's raw fuse.RawFileSystem-adjacent one, since that
// raw API is wired into squashfs-internal types (inodeRef, dirReader) that
// have no equivalent in vsfs's flat, single-file-type model.
//
// This is a supplemental feature (SPEC_FULL.md §13), not part of the
// distilled spec: vsfs itself has no concept of mounting via the host
// kernel, only via Mount/Unmount into a process.
package vsfsfuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/vdiskfs/vsfs"
)

// Root is the FUSE root node: the volume's single flat directory.
type Root struct {
	fs.Inode
	Vol *vsfs.Volume
}

var (
	_ fs.InodeEmbedder = (*Root)(nil)
	_ fs.NodeLookuper  = (*Root)(nil)
	_ fs.NodeReaddirer = (*Root)(nil)
)

// Lookup resolves one filename to a read-only file node.
func (r *Root) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	files, err := r.Vol.ListFiles()
	if err != nil {
		return nil, syscall.EIO
	}
	for _, f := range files {
		if f.Name != name {
			continue
		}
		out.Size = uint64(f.Size)
		out.Mode = fuse.S_IFREG | 0444
		child := r.NewInode(ctx, &fileNode{vol: r.Vol, name: f.Name, size: f.Size}, fs.StableAttr{Mode: fuse.S_IFREG})
		return child, 0
	}
	return nil, syscall.ENOENT
}

// Readdir lists every file on the volume. There are no subdirectories.
func (r *Root) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	files, err := r.Vol.ListFiles()
	if err != nil {
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, fuse.DirEntry{Name: f.Name, Mode: fuse.S_IFREG})
	}
	return fs.NewListDirStream(entries), 0
}

// fileNode is a single vsfs file exposed read-only over FUSE.
type fileNode struct {
	fs.Inode
	vol  *vsfs.Volume
	name string
	size int64
}

var (
	_ fs.InodeEmbedder = (*fileNode)(nil)
	_ fs.NodeOpener    = (*fileNode)(nil)
	_ fs.NodeGetattrer = (*fileNode)(nil)
)

func (f *fileNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Size = uint64(f.size)
	out.Mode = fuse.S_IFREG | 0444
	return 0
}

// Open reads the whole file into memory up front and serves it from there.
// vsfs files only support a single open handle and strictly-forward
// sequential reads (spec.md's Non-goals exclude seek/random access), but
// FUSE read requests can arrive in any order and overlap; reading once at
// Open time sidesteps that mismatch entirely instead of trying to fake
// random access on top of a forward-only position pointer.
func (f *fileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	fd, err := f.vol.Open(f.name, vsfs.ModeRead)
	if err != nil {
		return nil, 0, syscall.EIO
	}
	defer f.vol.Close(fd)

	buf := make([]byte, f.size)
	if f.size > 0 {
		if _, err := f.vol.Read(fd, buf, int(f.size)); err != nil {
			return nil, 0, syscall.EIO
		}
	}
	return &fileHandle{data: buf}, fuse.FOPEN_KEEP_CACHE, 0
}

type fileHandle struct {
	data []byte
}

var _ fs.FileReader = (*fileHandle)(nil)

func (h *fileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if off < 0 || off > int64(len(h.data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(h.data)) {
		end = int64(len(h.data))
	}
	return fuse.ReadResultData(h.data[off:end]), 0
}

// Mount mounts vol read-only at mountpoint and blocks until it is
// unmounted (e.g. via `umount mountpoint` or a signal unwound by the
// caller).
func Mount(mountpoint string, vol *vsfs.Volume) error {
	root := &Root{Vol: vol}
	server, err := fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:    "vsfs",
			FsName:  "vsfs",
			Options: []string{"ro"},
		},
	})
	if err != nil {
		return err
	}
	server.Wait()
	return nil
}
