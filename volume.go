package vsfs

import (
	"fmt"
	"log"
	"os"
)

// Volume is a mounted-volume handle: it owns the host container, the three
// in-memory caches (superblock, FAT, root directory) and the open-file
// table. Per spec.md §9 this replaces the original design's process-global
// state — callers create one Volume per Mount and pass it to every file
// operation as the receiver.
//
// A Volume is not safe for concurrent use from multiple goroutines; see
// spec.md §5.
type Volume struct {
	path string
	file *os.File
	dev  *blockDevice

	sb   superblock
	fat  *fatCache
	dir  *directoryCache
	open *openFileTable

	locked bool
}

// Format creates (or overwrites) the host container at path, sized 2^m
// bytes, zero-filled, and initializes a fresh superblock, FAT and root
// directory on it. m must satisfy MinVolumeShift <= m <= MaxVolumeShift and
// 2^m must be a multiple of BlockSize. Format does not leave the volume
// mounted, and is legal regardless of the volume's current state (spec.md
// §4.6's state machine).
func Format(path string, m uint, opts ...FormatOption) error {
	var cfg formatConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return err
		}
	}

	if m < MinVolumeShift || m > MaxVolumeShift {
		return fmt.Errorf("%w: m=%d must be in [%d, %d]", ErrBadShift, m, MinVolumeShift, MaxVolumeShift)
	}
	size := uint64(1) << m
	if size%BlockSize != 0 {
		return fmt.Errorf("%w: 2^%d is not a multiple of %d bytes", ErrBadShift, m, BlockSize)
	}
	totalBlocks := uint32(size / BlockSize)
	if totalBlocks <= MetadataBlockCount {
		return fmt.Errorf("%w: volume too small to hold metadata", ErrBadShift)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("vsfs: format: %w", err)
	}
	defer f.Close()

	if err := f.Truncate(int64(size)); err != nil {
		return fmt.Errorf("vsfs: format: %w", err)
	}

	dev := newBlockDevice(f, f)

	sb := initializeSuperblock(totalBlocks)
	if err := sb.flush(dev); err != nil {
		return err
	}

	fat := initializeFAT(totalBlocks)
	fat.dev = dev
	if err := fat.flush(); err != nil {
		return err
	}

	dir := initializeRootDir()
	dir.dev = dev
	if err := dir.flush(); err != nil {
		return err
	}

	log.Printf("vsfs: formatted %s: %d blocks total, %d data blocks", path, totalBlocks, sb.dataBlockCount)

	return f.Sync()
}

// Mount opens the host container at path, loads the superblock, the FAT
// cache and the root-directory cache, and returns a handle with an empty
// open-file table. It fails if the container cannot be opened.
func Mount(path string, opts ...MountOption) (*Volume, error) {
	var cfg mountConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("vsfs: mount: %w", err)
	}

	if cfg.lock {
		if err := flockExclusive(f); err != nil {
			f.Close()
			return nil, err
		}
	}

	dev := newBlockDevice(f, f)

	sb, err := loadSuperblock(dev)
	if err != nil {
		f.Close()
		return nil, err
	}

	fat, err := loadFAT(dev)
	if err != nil {
		f.Close()
		return nil, err
	}
	fat.dev = dev

	dir, err := loadRootDir(dev)
	if err != nil {
		f.Close()
		return nil, err
	}
	dir.dev = dev

	v := &Volume{
		path:   path,
		file:   f,
		dev:    dev,
		sb:     sb,
		fat:    fat,
		dir:    dir,
		open:   newOpenFileTable(),
		locked: cfg.lock,
	}

	log.Printf("vsfs: mounted %s", path)
	return v, nil
}

// Unmount flushes the superblock counters, the FAT and the root directory
// (in that order — independent, but all must land before the container is
// released), closes any still-open handles, and releases the container.
// After Unmount, v must not be used again.
func (v *Volume) Unmount() error {
	if v.file == nil {
		return ErrNotMounted
	}

	if err := v.sb.flush(v.dev); err != nil {
		return err
	}
	if err := v.fat.flush(); err != nil {
		return err
	}
	if err := v.dir.flush(); err != nil {
		return err
	}

	// No explicit handle teardown is needed beyond dropping the table: the
	// open-file table has no disk backing and every mutation so far has
	// already been written through.
	v.open = newOpenFileTable()

	if err := v.file.Sync(); err != nil {
		return fmt.Errorf("vsfs: unmount: %w", err)
	}

	if v.locked {
		_ = flockRelease(v.file)
	}

	err := v.file.Close()
	v.file = nil
	log.Printf("vsfs: unmounted %s", v.path)
	return err
}
