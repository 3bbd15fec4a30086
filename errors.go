package vsfs

import "errors"

// Package-specific error variables, usable with errors.Is(). These cover the
// error taxonomy of spec.md §7; operations wrap one of these with
// fmt.Errorf("...: %w", ...) to add call-site context, so both the sentinel
// and a human-readable message are available from a single error value.
var (
	// ErrDirectoryFull is returned by Create when the root directory has no
	// free entry left (file_count == DirEntryCount).
	ErrDirectoryFull = errors.New("vsfs: directory full")

	// ErrDiskFull is returned when the FAT has no free block left.
	ErrDiskFull = errors.New("vsfs: no free blocks")

	// ErrTooManyOpenFiles is returned by Open when the open-file table is at
	// capacity.
	ErrTooManyOpenFiles = errors.New("vsfs: too many open files")

	// ErrNotFound is returned when no directory entry matches a given name.
	ErrNotFound = errors.New("vsfs: file not found")

	// ErrExists is returned by Create when the name is already in use.
	ErrExists = errors.New("vsfs: file already exists")

	// ErrAlreadyOpen is returned by Open when the name already has an open
	// handle (single-open-per-file).
	ErrAlreadyOpen = errors.New("vsfs: file already open")

	// ErrBadMode is returned when an operation is attempted against a
	// handle opened in the wrong AccessMode (read in append mode, append in
	// read mode).
	ErrBadMode = errors.New("vsfs: invalid access mode for operation")

	// ErrRange is returned for an out-of-range request: a negative or
	// past-end-of-file read length, or a non-positive append length.
	ErrRange = errors.New("vsfs: invalid range")

	// ErrClosed is returned when an operation is attempted against a fd
	// that is not currently open.
	ErrClosed = errors.New("vsfs: file descriptor not open")

	// ErrBadFd is returned when a fd is out of the [0, MaxOpenFiles) range.
	ErrBadFd = errors.New("vsfs: invalid file descriptor")

	// ErrNotMounted is returned by file operations when no volume is
	// mounted.
	ErrNotMounted = errors.New("vsfs: volume not mounted")

	// ErrAlreadyMounted names the state of mounting a volume that is
	// already mounted. No operation in this package returns it: Mount
	// always opens a new handle.
	ErrAlreadyMounted = errors.New("vsfs: volume already mounted")

	// ErrBadShift is returned by Format when m is outside
	// [MinVolumeShift, MaxVolumeShift] or 2^m isn't a multiple of BlockSize.
	ErrBadShift = errors.New("vsfs: invalid volume size shift")

	// ErrBadFilename is returned when a filename is empty or would not fit
	// in MaxFilenameLength bytes including its NUL terminator.
	ErrBadFilename = errors.New("vsfs: invalid filename")

	// ErrCorrupt is the critical consistency error of spec.md §7: a FAT
	// chain terminated before the directory's recorded size was reached.
	// This indicates on-disk corruption, since the pre-check against the
	// recorded size already passed.
	ErrCorrupt = errors.New("vsfs: inconsistent volume (chain shorter than recorded size)")

	// ErrDirectoryCorrupt is returned internally when a directory slot that
	// Create's earlier capacity check says must exist can't be found; it
	// indicates the in-memory and on-disk directory caches have diverged.
	ErrDirectoryCorrupt = errors.New("vsfs: inconsistent volume (directory slot unavailable)")
)
