package vsfs

// handle is one entry of the open-file table: {access_mode, dir_entry_index,
// position_ptr, in_use}. It references the directory slot it refers to by
// index, not pointer — the handle stays valid only as long as that slot
// isn't deallocated out from under it.
type handle struct {
	inUse       bool
	accessMode  AccessMode
	dirIndex    int
	positionPtr int64
}

// openFileTable is the fixed-capacity, process-local table of open handles.
// It has no disk backing: Mount always starts with every slot free.
type openFileTable struct {
	slots         [MaxOpenFiles]handle
	openFileCount int
}

func newOpenFileTable() *openFileTable {
	return &openFileTable{}
}

// findFree returns the lowest-index slot with in_use == false, or -1.
func (t *openFileTable) findFree() int {
	for i := range t.slots {
		if !t.slots[i].inUse {
			return i
		}
	}
	return -1
}

// openSlot populates fd with a fresh handle and bumps the open count.
func (t *openFileTable) openSlot(fd, dirIndex int, mode AccessMode) {
	t.slots[fd] = handle{
		inUse:       true,
		accessMode:  mode,
		dirIndex:    dirIndex,
		positionPtr: 0,
	}
	t.openFileCount++
}

// closeSlot frees fd and decrements the open count.
func (t *openFileTable) closeSlot(fd int) {
	t.slots[fd] = handle{}
	t.openFileCount--
}

// findByDirIndex returns the fd of any open handle referencing the given
// directory slot, or -1. Used by Delete's implicit close; Open's
// single-open-per-file check compares filenames instead.
func (t *openFileTable) findByDirIndex(dirIndex int) int {
	for i := range t.slots {
		if t.slots[i].inUse && t.slots[i].dirIndex == dirIndex {
			return i
		}
	}
	return -1
}
