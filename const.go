package vsfs

// On-disk layout constants. These are part of the on-disk contract: changing
// any of them breaks compatibility with volumes formatted by a previous
// version of this package.
const (
	// BlockSize is the fixed size, in bytes, of every block on the volume.
	BlockSize = 2048

	// SuperblockIndex is the block holding the Superblock.
	SuperblockIndex = 0

	// FATStartBlock and FATBlockCount bound the blocks holding the FAT.
	FATStartBlock = 1
	FATBlockCount = 32

	// FATEntrySize is the on-disk size, in bytes, of one FAT entry.
	FATEntrySize = 4
	// FATEntriesPerBlock is how many FAT entries fit in one block.
	FATEntriesPerBlock = BlockSize / FATEntrySize
	// FATEntryCount is the total number of FAT entries (one per volume block
	// representable by the FAT region).
	FATEntryCount = FATEntriesPerBlock * FATBlockCount

	// RootDirStartBlock and RootDirBlockCount bound the blocks holding the
	// root directory.
	RootDirStartBlock = 33
	RootDirBlockCount = 8

	// DirEntrySize is the on-disk size, in bytes, of one directory entry.
	DirEntrySize = 128
	// DirEntriesPerBlock is how many directory entries fit in one block.
	DirEntriesPerBlock = BlockSize / DirEntrySize
	// DirEntryCount is the total number of directory entries (the maximum
	// number of files a volume can hold).
	DirEntryCount = DirEntriesPerBlock * RootDirBlockCount

	// MetadataBlockCount is the number of blocks reserved for the
	// superblock, FAT and root directory (blocks 0..40).
	MetadataBlockCount = 1 + FATBlockCount + RootDirBlockCount

	// MaxFilenameLength is the maximum length of a NUL-terminated filename,
	// including the terminator.
	MaxFilenameLength = 30

	// MaxOpenFiles is the capacity of the open-file table.
	MaxOpenFiles = 16

	// MinVolumeShift and MaxVolumeShift bound the `m` argument to Format:
	// the volume is 2^m bytes.
	MinVolumeShift = 18
	MaxVolumeShift = 23
)

// FAT sentinel values. Any FAT entry that isn't one of these is the 0-based
// index of the next block in the owning file's chain.
const (
	// FATFree marks a block as unallocated. It collides with block index 0,
	// which is why block 0 (the superblock) is always marked FATEOF instead.
	FATFree int32 = 0
	// FATEOF marks a block as the last block of a chain.
	FATEOF int32 = -1
)

// AccessMode selects how a handle returned by Open may be used.
type AccessMode int32

const (
	// ModeRead opens a file for sequential reading from its start.
	ModeRead AccessMode = 0
	// ModeAppend opens a file for appending bytes to its end.
	ModeAppend AccessMode = 1
)

func (m AccessMode) String() string {
	switch m {
	case ModeRead:
		return "READ"
	case ModeAppend:
		return "APPEND"
	default:
		return "INVALID"
	}
}
