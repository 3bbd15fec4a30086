package vsfs

import (
	"encoding/binary"
	"fmt"
	"log"
)

// superblock holds the four on-disk counters describing the volume. It is
// persisted in block 0 as four little-endian 32-bit integers at offsets
// 0, 4, 8, 12; bytes 16..2047 are unused.
type superblock struct {
	dataBlockCount  uint32
	totalBlockCount uint32
	freeBlockCount  uint32
	fileCount       uint32
}

// initializeSuperblock builds a fresh superblock for a volume of
// totalBlocks blocks, all of which are free except the metadata blocks.
func initializeSuperblock(totalBlocks uint32) superblock {
	return superblock{
		dataBlockCount:  totalBlocks - MetadataBlockCount,
		totalBlockCount: totalBlocks,
		freeBlockCount:  totalBlocks - MetadataBlockCount,
		fileCount:       0,
	}
}

// loadSuperblock reads block 0 into the four counters.
func loadSuperblock(dev *blockDevice) (superblock, error) {
	block, err := dev.readBlock(SuperblockIndex)
	if err != nil {
		return superblock{}, err
	}

	sb := superblock{
		dataBlockCount:  binary.LittleEndian.Uint32(block[0:4]),
		totalBlockCount: binary.LittleEndian.Uint32(block[4:8]),
		freeBlockCount:  binary.LittleEndian.Uint32(block[8:12]),
		fileCount:       binary.LittleEndian.Uint32(block[12:16]),
	}

	if sb.dataBlockCount != sb.totalBlockCount-MetadataBlockCount {
		return superblock{}, fmt.Errorf("vsfs: %w: data_block_count inconsistent with total_block_count", ErrCorrupt)
	}
	if sb.freeBlockCount > sb.dataBlockCount {
		return superblock{}, fmt.Errorf("vsfs: %w: free_block_count exceeds data_block_count", ErrCorrupt)
	}
	if sb.fileCount > DirEntryCount {
		return superblock{}, fmt.Errorf("vsfs: %w: file_count exceeds directory capacity", ErrCorrupt)
	}

	log.Printf("vsfs: loaded superblock (total=%d data=%d free=%d files=%d)",
		sb.totalBlockCount, sb.dataBlockCount, sb.freeBlockCount, sb.fileCount)
	return sb, nil
}

// flush writes the full superblock to block 0. data_block_count and
// total_block_count never change after Format, but writing all four fields
// keeps the implementation simple and costs nothing extra (one block).
func (sb *superblock) flush(dev *blockDevice) error {
	block := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(block[0:4], sb.dataBlockCount)
	binary.LittleEndian.PutUint32(block[4:8], sb.totalBlockCount)
	binary.LittleEndian.PutUint32(block[8:12], sb.freeBlockCount)
	binary.LittleEndian.PutUint32(block[12:16], sb.fileCount)
	return dev.writeBlock(SuperblockIndex, block)
}
