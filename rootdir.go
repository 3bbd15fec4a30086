package vsfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// dirEntry is the in-memory decode of one 128-byte directory record:
// filename[30], size:i32 @30, start_block:i32 @34, allocated:i32 @38. Bytes
// 42..127 are unused padding.
type dirEntry struct {
	filename   [MaxFilenameLength]byte
	size       int32
	startBlock int32
	allocated  int32
}

// name returns the filename as a Go string, stopping at the first NUL.
func (e *dirEntry) name() string {
	n := bytes.IndexByte(e.filename[:], 0)
	if n < 0 {
		n = len(e.filename)
	}
	return string(e.filename[:n])
}

func (e *dirEntry) setName(name string) error {
	if len(name) == 0 || len(name)+1 > MaxFilenameLength {
		return fmt.Errorf("%w: %q", ErrBadFilename, name)
	}
	var buf [MaxFilenameLength]byte
	copy(buf[:], name)
	e.filename = buf
	return nil
}

// directoryCache is the in-memory image of the flat root directory: a fixed
// array of DirEntryCount entries, backed by blocks
// RootDirStartBlock..RootDirStartBlock+RootDirBlockCount-1.
type directoryCache struct {
	dev     *blockDevice
	entries [DirEntryCount]dirEntry
}

func dirEntryLocation(index int) (block int, offsetInBlock int) {
	return RootDirStartBlock + index/DirEntriesPerBlock, index % DirEntriesPerBlock
}

// initializeRootDir builds a fresh, entirely-unallocated directory.
func initializeRootDir() *directoryCache {
	return &directoryCache{}
}

func decodeDirEntry(raw []byte) dirEntry {
	var e dirEntry
	copy(e.filename[:], raw[0:30])
	e.size = int32(binary.LittleEndian.Uint32(raw[30:34]))
	e.startBlock = int32(binary.LittleEndian.Uint32(raw[34:38]))
	e.allocated = int32(binary.LittleEndian.Uint32(raw[38:42]))
	return e
}

func encodeDirEntry(e *dirEntry, raw []byte) {
	copy(raw[0:30], e.filename[:])
	binary.LittleEndian.PutUint32(raw[30:34], uint32(e.size))
	binary.LittleEndian.PutUint32(raw[34:38], uint32(e.startBlock))
	binary.LittleEndian.PutUint32(raw[38:42], uint32(e.allocated))
	// bytes 42..127 left as zero padding.
}

// loadRootDir performs a bulk read of the directory blocks, decoding each
// 128-byte record at its fixed offset.
func loadRootDir(dev *blockDevice) (*directoryCache, error) {
	dc := &directoryCache{dev: dev}
	for b := 0; b < RootDirBlockCount; b++ {
		block, err := dev.readBlock(RootDirStartBlock + b)
		if err != nil {
			return nil, err
		}
		for e := 0; e < DirEntriesPerBlock; e++ {
			off := e * DirEntrySize
			dc.entries[b*DirEntriesPerBlock+e] = decodeDirEntry(block[off : off+DirEntrySize])
		}
	}
	return dc, nil
}

// flush performs a bulk write of all directory blocks to disk.
func (dc *directoryCache) flush() error {
	for b := 0; b < RootDirBlockCount; b++ {
		block := make([]byte, BlockSize)
		for e := 0; e < DirEntriesPerBlock; e++ {
			off := e * DirEntrySize
			encodeDirEntry(&dc.entries[b*DirEntriesPerBlock+e], block[off:off+DirEntrySize])
		}
		if err := dc.dev.writeBlock(RootDirStartBlock+b, block); err != nil {
			return err
		}
	}
	return nil
}

// findFreeSlot returns the lowest-index entry with allocated == 0, or -1.
func (dc *directoryCache) findFreeSlot() int {
	for i := range dc.entries {
		if dc.entries[i].allocated == 0 {
			return i
		}
	}
	return -1
}

// findByName returns the lowest-index allocated entry whose filename
// byte-exactly matches name, or -1.
func (dc *directoryCache) findByName(name string) int {
	for i := range dc.entries {
		if dc.entries[i].allocated == 1 && dc.entries[i].name() == name {
			return i
		}
	}
	return -1
}

// writeSlot writes a full entry, updating the cache and write-through to
// the single directory block containing index.
func (dc *directoryCache) writeSlot(index int, name string, size, start int32, allocated int32) error {
	e := dirEntry{size: size, startBlock: start, allocated: allocated}
	if allocated == 1 {
		if err := e.setName(name); err != nil {
			return err
		}
	}
	dc.entries[index] = e
	return dc.writeThrough(index)
}

// clearSlot sets allocated = 0 in the cache and on disk; other fields are
// left as-is, matching spec.md §4.4 ("other fields need not be wiped").
func (dc *directoryCache) clearSlot(index int) error {
	dc.entries[index].allocated = 0
	return dc.writeThrough(index)
}

// setSize updates only the size field of an already-allocated entry,
// write-through.
func (dc *directoryCache) setSize(index int, size int32) error {
	dc.entries[index].size = size
	return dc.writeThrough(index)
}

func (dc *directoryCache) writeThrough(index int) error {
	block, offInBlock := dirEntryLocation(index)
	raw, err := dc.dev.readBlock(block)
	if err != nil {
		return err
	}
	encodeDirEntry(&dc.entries[index], raw[offInBlock*DirEntrySize:offInBlock*DirEntrySize+DirEntrySize])
	return dc.dev.writeBlock(block, raw)
}
