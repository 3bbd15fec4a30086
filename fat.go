package vsfs

import (
	"encoding/binary"
	"fmt"
)

// fatCache is the in-memory image of the File Allocation Table: one signed
// 32-bit entry per volume block, identifying the next block in the owning
// file's chain, or FATFree, or FATEOF. It is backed by blocks
// FATStartBlock..FATStartBlock+FATBlockCount-1.
type fatCache struct {
	dev     *blockDevice
	entries [FATEntryCount]int32
}

// fatEntryLocation returns the FAT block index and the entry's offset within
// that block's decoded entry array.
func fatEntryLocation(index int) (block int, offsetInBlock int) {
	return FATStartBlock + index/FATEntriesPerBlock, index % FATEntriesPerBlock
}

// initializeFAT builds a fresh FAT for a volume of totalBlocks blocks:
// metadata blocks (0..MetadataBlockCount-1) and any index beyond
// totalBlocks-1 are marked FATEOF (permanently unavailable); every other
// entry starts FATFree.
func initializeFAT(totalBlocks uint32) *fatCache {
	fc := &fatCache{}
	for i := 0; i < FATEntryCount; i++ {
		switch {
		case i < MetadataBlockCount:
			fc.entries[i] = FATEOF
		case uint32(i) >= totalBlocks:
			fc.entries[i] = FATEOF
		default:
			fc.entries[i] = FATFree
		}
	}
	return fc
}

// loadFAT performs a bulk read of the FAT blocks into memory.
func loadFAT(dev *blockDevice) (*fatCache, error) {
	fc := &fatCache{dev: dev}
	for b := 0; b < FATBlockCount; b++ {
		block, err := dev.readBlock(FATStartBlock + b)
		if err != nil {
			return nil, err
		}
		for e := 0; e < FATEntriesPerBlock; e++ {
			off := e * FATEntrySize
			fc.entries[b*FATEntriesPerBlock+e] = int32(binary.LittleEndian.Uint32(block[off : off+4]))
		}
	}
	return fc, nil
}

// flush performs a bulk write of all FAT blocks to disk.
func (fc *fatCache) flush() error {
	for b := 0; b < FATBlockCount; b++ {
		block := make([]byte, BlockSize)
		for e := 0; e < FATEntriesPerBlock; e++ {
			off := e * FATEntrySize
			binary.LittleEndian.PutUint32(block[off:off+4], uint32(fc.entries[b*FATEntriesPerBlock+e]))
		}
		if err := fc.dev.writeBlock(FATStartBlock+b, block); err != nil {
			return err
		}
	}
	return nil
}

// findFree returns the lowest index whose entry is FATFree, or -1 if there
// is none. O(FATEntryCount); intentionally unbatched per spec.md §4.3.
func (fc *fatCache) findFree() int {
	for i := 0; i < FATEntryCount; i++ {
		if fc.entries[i] == FATFree {
			return i
		}
	}
	return -1
}

// set writes entry `index` to `value`, updating the in-memory cache and
// write-through to the single FAT block that owns it (one block
// read-modify-write). It does not adjust free_block_count; callers do.
func (fc *fatCache) set(index int, value int32) error {
	fc.entries[index] = value

	block, offInBlock := fatEntryLocation(index)
	raw, err := fc.dev.readBlock(block)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(raw[offInBlock*FATEntrySize:offInBlock*FATEntrySize+4], uint32(value))
	return fc.dev.writeBlock(block, raw)
}

// lastOfChain follows next-pointers from start until FATEOF, returning the
// terminal block index.
func (fc *fatCache) lastOfChain(start int) (int, error) {
	cur := start
	for {
		next := fc.entries[cur]
		if next == FATEOF {
			return cur, nil
		}
		if next == FATFree {
			return 0, fmt.Errorf("vsfs: %w: chain from block %d hits a free block", ErrCorrupt, start)
		}
		cur = int(next)
	}
}

// chainLength returns the number of blocks in the chain starting at start.
func (fc *fatCache) chainLength(start int) (int, error) {
	n := 0
	cur := start
	for {
		n++
		next := fc.entries[cur]
		if next == FATEOF {
			return n, nil
		}
		if next == FATFree {
			return 0, fmt.Errorf("vsfs: %w: chain from block %d hits a free block", ErrCorrupt, start)
		}
		cur = int(next)
	}
}

// freeChain walks the chain starting at start, marking every block FATFree
// (cache + disk write-through) and incrementing *freeBlockCount for each.
// Terminates when the next pointer is FATEOF.
func (fc *fatCache) freeChain(start int, freeBlockCount *uint32) error {
	cur := start
	for {
		next := fc.entries[cur]
		if err := fc.set(cur, FATFree); err != nil {
			return err
		}
		*freeBlockCount++
		if next == FATEOF {
			return nil
		}
		cur = int(next)
	}
}
