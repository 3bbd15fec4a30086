package vsfs

import "fmt"

// VolumeStats summarizes a mounted volume's counters, the read-only
// equivalent of the on-disk superblock.
type VolumeStats struct {
	TotalBlocks uint32
	DataBlocks  uint32
	FreeBlocks  uint32
	FileCount   uint32
}

// Stat returns the volume's current superblock counters.
func (v *Volume) Stat() (VolumeStats, error) {
	if err := v.checkMounted(); err != nil {
		return VolumeStats{}, err
	}
	return VolumeStats{
		TotalBlocks: v.sb.totalBlockCount,
		DataBlocks:  v.sb.dataBlockCount,
		FreeBlocks:  v.sb.freeBlockCount,
		FileCount:   v.sb.fileCount,
	}, nil
}

// FsckReport is the result of a read-only consistency walk of the FAT and
// root directory against the superblock counters. It reports recomputed
// values; it does not write them back to the superblock.
type FsckReport struct {
	// ComputedFreeBlocks is the number of data-region FAT entries that are
	// FATFree, counted independently of the superblock's own counter.
	ComputedFreeBlocks uint32
	// OrphanedBlocks are FAT-allocated blocks not reachable from any
	// directory entry's start_block. Blocks linked into a file's chain past
	// its recorded size are reachable and are not listed here; Fsck returns
	// ErrCorrupt for such a chain instead of a report.
	OrphanedBlocks []int
	// DuplicateNames lists filenames that appear on more than one
	// allocated directory entry, which should never happen but is checked
	// for defensively since Fsck is meant to catch exactly this kind of
	// invariant violation.
	DuplicateNames []string
	// Consistent is true iff the superblock's free_block_count and
	// file_count agree with the recomputed values and no orphans or
	// duplicate names were found.
	Consistent bool
}

// Fsck walks the FAT and root directory and cross-checks them against the
// superblock counters, without modifying anything. It implements the
// quantified invariants of spec.md §8:
//
//	∑(over allocated files) max(1, ceil(size/BlockSize)) + free_block_count + 41 == total_block_count
//
// (a zero-size file still owns the block Create allocated for it), and
// pairwise filename distinctness. A chain whose length differs from that
// per-file block count makes Fsck return ErrCorrupt.
func (v *Volume) Fsck() (FsckReport, error) {
	if err := v.checkMounted(); err != nil {
		return FsckReport{}, err
	}

	reachable := make(map[int]bool)
	seenNames := make(map[string]int)
	var dupNames []string

	for i := range v.dir.entries {
		e := &v.dir.entries[i]
		if e.allocated != 1 {
			continue
		}

		name := e.name()
		if _, dup := seenNames[name]; dup {
			dupNames = append(dupNames, name)
		} else {
			seenNames[name] = i
		}

		expectedSteps := ceilDiv(int64(e.size), BlockSize)
		if e.size == 0 {
			expectedSteps = 1 // the always-allocated first block
		}

		block := int(e.startBlock)
		steps := int64(0)
		for {
			reachable[block] = true
			steps++
			if steps > int64(FATEntryCount) {
				return FsckReport{}, fmt.Errorf("%w: chain from block %d does not terminate", ErrCorrupt, e.startBlock)
			}
			next := v.fat.entries[block]
			if next == FATEOF {
				break
			}
			if next == FATFree {
				return FsckReport{}, fmt.Errorf("%w: chain from block %d hits a free block", ErrCorrupt, e.startBlock)
			}
			block = int(next)
		}
		if steps != expectedSteps {
			return FsckReport{}, fmt.Errorf("%w: file %q chain length %d, expected %d", ErrCorrupt, name, steps, expectedSteps)
		}
	}

	var computedFree uint32
	var orphans []int
	for i := MetadataBlockCount; i < int(v.sb.totalBlockCount); i++ {
		switch {
		case v.fat.entries[i] == FATFree:
			computedFree++
		case !reachable[i]:
			orphans = append(orphans, i)
		}
	}

	report := FsckReport{
		ComputedFreeBlocks: computedFree,
		OrphanedBlocks:     orphans,
		DuplicateNames:     dupNames,
	}
	report.Consistent = computedFree == v.sb.freeBlockCount &&
		len(orphans) == 0 &&
		len(dupNames) == 0 &&
		uint32(len(seenNames)) == v.sb.fileCount

	return report, nil
}

// Reclaim frees every orphaned block found by Fsck, incrementing
// free_block_count for each, and returns how many it freed. It does not
// shorten a chain that runs past its file's recorded size (the leak left by
// an append that failed before committing the new size): Fsck returns
// ErrCorrupt for such a chain, and Reclaim returns that error without
// freeing anything.
func (v *Volume) Reclaim() (int, error) {
	report, err := v.Fsck()
	if err != nil {
		return 0, err
	}
	for _, b := range report.OrphanedBlocks {
		if err := v.fat.set(b, FATFree); err != nil {
			return 0, err
		}
		v.sb.freeBlockCount++
	}
	return len(report.OrphanedBlocks), nil
}
