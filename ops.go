package vsfs

import (
	"fmt"
	"log"
)

func (v *Volume) checkMounted() error {
	if v == nil || v.file == nil {
		return ErrNotMounted
	}
	return nil
}

func (v *Volume) checkFd(fd int) (*handle, error) {
	if fd < 0 || fd >= MaxOpenFiles {
		return nil, fmt.Errorf("%w: %d", ErrBadFd, fd)
	}
	h := &v.open.slots[fd]
	if !h.inUse {
		return nil, fmt.Errorf("%w: fd %d", ErrClosed, fd)
	}
	return h, nil
}

// Create adds a new, empty file named name to the root directory. It fails
// if the directory is full, the name is already in use, or there is no free
// block to serve as the file's (empty) first block.
func (v *Volume) Create(name string) error {
	if err := v.checkMounted(); err != nil {
		return err
	}

	if v.sb.fileCount == DirEntryCount {
		return fmt.Errorf("%w: create %q", ErrDirectoryFull, name)
	}
	if v.dir.findByName(name) != -1 {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}

	block := v.fat.findFree()
	if block == -1 {
		return fmt.Errorf("%w: create %q", ErrDiskFull, name)
	}

	slot := v.dir.findFreeSlot()
	if slot == -1 {
		// The file_count check above should have guaranteed a free slot;
		// reaching here means the cache and the counter have diverged.
		return fmt.Errorf("%w: create %q", ErrDirectoryCorrupt, name)
	}

	if err := v.fat.set(block, FATEOF); err != nil {
		return err
	}
	v.sb.freeBlockCount--

	if err := v.dir.writeSlot(slot, name, 0, int32(block), 1); err != nil {
		return err
	}
	v.sb.fileCount++

	log.Printf("vsfs: created %q (block %d, slot %d)", name, block, slot)
	return nil
}

// Open returns a file descriptor for name in the given AccessMode. It fails
// if the open-file table is full, if name is already open under any mode,
// or if name does not exist.
func (v *Volume) Open(name string, mode AccessMode) (int, error) {
	if err := v.checkMounted(); err != nil {
		return -1, err
	}

	if v.open.openFileCount == MaxOpenFiles {
		return -1, fmt.Errorf("%w: open %q", ErrTooManyOpenFiles, name)
	}

	for i := range v.open.slots {
		if v.open.slots[i].inUse && v.dir.entries[v.open.slots[i].dirIndex].name() == name {
			return -1, fmt.Errorf("%w: %q", ErrAlreadyOpen, name)
		}
	}

	fd := v.open.findFree()
	if fd == -1 {
		return -1, fmt.Errorf("%w: open %q", ErrTooManyOpenFiles, name)
	}

	idx := v.dir.findByName(name)
	if idx == -1 {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	v.open.openSlot(fd, idx, mode)
	return fd, nil
}

// Close releases fd back to the open-file table.
func (v *Volume) Close(fd int) error {
	if err := v.checkMounted(); err != nil {
		return err
	}
	if _, err := v.checkFd(fd); err != nil {
		return err
	}
	v.open.closeSlot(fd)
	return nil
}

// Size returns the current size, in bytes, of the file referenced by fd.
func (v *Volume) Size(fd int) (int, error) {
	if err := v.checkMounted(); err != nil {
		return -1, err
	}
	h, err := v.checkFd(fd)
	if err != nil {
		return -1, err
	}
	return int(v.dir.entries[h.dirIndex].size), nil
}

// Read copies up to n bytes from fd's file into buf, starting at fd's
// current position, and advances the position by the number of bytes
// copied. fd must be open in ModeRead. It fails if n is negative or would
// read past the end of the file; reads never seek backward, so a read
// failure leaves the position unchanged.
func (v *Volume) Read(fd int, buf []byte, n int) (int, error) {
	if err := v.checkMounted(); err != nil {
		return 0, err
	}
	h, err := v.checkFd(fd)
	if err != nil {
		return 0, err
	}
	if h.accessMode != ModeRead {
		return 0, fmt.Errorf("%w: fd %d not opened for read", ErrBadMode, fd)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative length %d", ErrRange, n)
	}
	if len(buf) < n {
		return 0, fmt.Errorf("vsfs: read: buffer shorter than n (%d < %d)", len(buf), n)
	}

	e := &v.dir.entries[h.dirIndex]
	start := h.positionPtr
	end := start + int64(n)
	if end > int64(e.size) {
		return 0, fmt.Errorf("%w: read past end of file (end=%d size=%d)", ErrRange, end, e.size)
	}

	if n == 0 {
		return 0, nil
	}

	startLogical := int(start / BlockSize)
	endLogical := int(end / BlockSize)
	startOff := int(start % BlockSize)
	endOff := int(end % BlockSize)

	// An end-aligned read (endOff == 0) stops at the previous block's
	// boundary and never needs to touch, or even traverse to, the block at
	// endLogical.
	lastLogical := endLogical
	if endOff == 0 {
		lastLogical = endLogical - 1
	}

	block := int(e.startBlock)
	for i := 0; i < startLogical; i++ {
		next := v.fat.entries[block]
		if next == FATEOF {
			return 0, fmt.Errorf("%w: chain shorter than recorded position", ErrCorrupt)
		}
		block = int(next)
	}

	bufPos := 0
	for logical := startLogical; logical <= lastLogical; logical++ {
		data, err := v.dev.readBlock(block)
		if err != nil {
			return bufPos, err
		}

		rangeStart := 0
		if logical == startLogical {
			rangeStart = startOff
		}
		rangeEnd := BlockSize
		if logical == endLogical && endOff != 0 {
			rangeEnd = endOff
		}

		bufPos += copy(buf[bufPos:], data[rangeStart:rangeEnd])

		if logical < lastLogical {
			next := v.fat.entries[block]
			if next == FATEOF {
				return bufPos, fmt.Errorf("%w: chain shorter than recorded size", ErrCorrupt)
			}
			block = int(next)
		}
	}

	h.positionPtr = end
	return bufPos, nil
}

// Append writes n bytes from buf to the end of fd's file, growing its block
// chain as needed. fd must be open in ModeAppend and n must be positive. If
// satisfying the request would require more blocks than are currently free,
// Append fails before allocating or writing anything.
func (v *Volume) Append(fd int, buf []byte, n int) (int, error) {
	if err := v.checkMounted(); err != nil {
		return 0, err
	}
	h, err := v.checkFd(fd)
	if err != nil {
		return 0, err
	}
	if h.accessMode != ModeAppend {
		return 0, fmt.Errorf("%w: fd %d not opened for append", ErrBadMode, fd)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: non-positive append length %d", ErrRange, n)
	}
	if len(buf) < n {
		return 0, fmt.Errorf("vsfs: append: buffer shorter than n (%d < %d)", len(buf), n)
	}

	e := &v.dir.entries[h.dirIndex]
	size := int64(e.size)

	cursor := size % BlockSize
	if size > 0 && cursor == 0 {
		cursor = BlockSize
	}

	avail := BlockSize - cursor
	var required int64
	if int64(n) > avail {
		required = ceilDiv(int64(n)-avail, BlockSize)
	}
	if required > int64(v.sb.freeBlockCount) {
		return 0, fmt.Errorf("%w: append needs %d blocks, %d free", ErrDiskFull, required, v.sb.freeBlockCount)
	}

	lastBlock, err := v.fat.lastOfChain(int(e.startBlock))
	if err != nil {
		return 0, err
	}

	remaining := n
	bufOff := 0
	for remaining > 0 {
		if cursor == BlockSize {
			nb := v.fat.findFree()
			if nb == -1 {
				return bufOff, fmt.Errorf("%w: ran out of free blocks mid-append", ErrDiskFull)
			}
			if err := v.fat.set(nb, FATEOF); err != nil {
				return bufOff, err
			}
			if err := v.fat.set(lastBlock, int32(nb)); err != nil {
				return bufOff, err
			}
			v.sb.freeBlockCount--
			lastBlock = nb
			cursor = 0
		}

		toWrite := int64(BlockSize) - cursor
		if toWrite > int64(remaining) {
			toWrite = int64(remaining)
		}

		raw, err := v.dev.readBlock(lastBlock)
		if err != nil {
			return bufOff, err
		}
		copy(raw[cursor:cursor+toWrite], buf[bufOff:bufOff+int(toWrite)])
		if err := v.dev.writeBlock(lastBlock, raw); err != nil {
			return bufOff, err
		}

		cursor += toWrite
		bufOff += int(toWrite)
		remaining -= int(toWrite)
	}

	if err := v.dir.setSize(h.dirIndex, int32(size+int64(n))); err != nil {
		return bufOff, err
	}

	return bufOff, nil
}

// Delete removes name from the volume: any open handle referring to it is
// silently closed, its directory entry is cleared, and its entire block
// chain is freed.
func (v *Volume) Delete(name string) error {
	if err := v.checkMounted(); err != nil {
		return err
	}

	idx := v.dir.findByName(name)
	if idx != -1 {
		if fd := v.open.findByDirIndex(idx); fd != -1 {
			v.open.closeSlot(fd)
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	startBlock := int(v.dir.entries[idx].startBlock)

	if err := v.dir.clearSlot(idx); err != nil {
		return err
	}
	if err := v.fat.freeChain(startBlock, &v.sb.freeBlockCount); err != nil {
		return err
	}
	v.sb.fileCount--

	log.Printf("vsfs: deleted %q", name)
	return nil
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
