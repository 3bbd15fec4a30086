package vsfs

import "testing"

func TestOpenFileTableFindFreeAndOpenSlot(t *testing.T) {
	ot := newOpenFileTable()

	fd := ot.findFree()
	if fd != 0 {
		t.Fatalf("findFree on empty table = %d, want 0", fd)
	}
	ot.openSlot(fd, 5, ModeRead)
	if !ot.slots[fd].inUse {
		t.Errorf("slot %d not marked in use after openSlot", fd)
	}
	if ot.openFileCount != 1 {
		t.Errorf("openFileCount = %d, want 1", ot.openFileCount)
	}

	next := ot.findFree()
	if next != 1 {
		t.Errorf("findFree after one open = %d, want 1", next)
	}
}

func TestOpenFileTableCloseSlot(t *testing.T) {
	ot := newOpenFileTable()
	ot.openSlot(0, 7, ModeAppend)
	ot.closeSlot(0)

	if ot.slots[0].inUse {
		t.Errorf("slot still in use after closeSlot")
	}
	if ot.openFileCount != 0 {
		t.Errorf("openFileCount = %d, want 0", ot.openFileCount)
	}
}

func TestOpenFileTableFindByDirIndex(t *testing.T) {
	ot := newOpenFileTable()
	ot.openSlot(2, 9, ModeRead)

	if got := ot.findByDirIndex(9); got != 2 {
		t.Errorf("findByDirIndex(9) = %d, want 2", got)
	}
	if got := ot.findByDirIndex(10); got != -1 {
		t.Errorf("findByDirIndex(10) = %d, want -1", got)
	}
}

func TestOpenFileTableFullReturnsNoFreeSlot(t *testing.T) {
	ot := newOpenFileTable()
	for i := 0; i < MaxOpenFiles; i++ {
		ot.openSlot(i, i, ModeRead)
	}
	if got := ot.findFree(); got != -1 {
		t.Errorf("findFree on full table = %d, want -1", got)
	}
}
