package vsfs_test

import (
	"path/filepath"
	"testing"

	"github.com/vdiskfs/vsfs"
)

func TestFormatRejectsOutOfRangeShift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := vsfs.Format(path, vsfs.MinVolumeShift-1); err == nil {
		t.Fatalf("Format with shift below MinVolumeShift: expected error, got nil")
	}
	if err := vsfs.Format(path, vsfs.MaxVolumeShift+1); err == nil {
		t.Fatalf("Format with shift above MaxVolumeShift: expected error, got nil")
	}
}

func TestMountUnmountedOperationsFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := vsfs.Format(path, vsfs.MinVolumeShift); err != nil {
		t.Fatal(err)
	}
	v, err := vsfs.Mount(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Unmount(); err != nil {
		t.Fatalf("Unmount: %s", err)
	}

	if err := v.Create("x"); err == nil {
		t.Fatalf("Create after Unmount: expected error, got nil")
	}
	if err := v.Unmount(); err == nil {
		t.Fatalf("double Unmount: expected error, got nil")
	}
}

func TestMountWithLockRejectsSecondMount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := vsfs.Format(path, vsfs.MinVolumeShift); err != nil {
		t.Fatal(err)
	}

	v1, err := vsfs.Mount(path, vsfs.WithLock())
	if err != nil {
		t.Fatalf("first Mount with lock: %s", err)
	}
	defer v1.Unmount()

	if _, err := vsfs.Mount(path, vsfs.WithLock()); err == nil {
		t.Fatalf("second locked Mount: expected error, got nil")
	}
}

func TestStatOnFreshVolume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := vsfs.Format(path, vsfs.MinVolumeShift); err != nil {
		t.Fatal(err)
	}
	v, err := vsfs.Mount(path)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Unmount()

	s, err := v.Stat()
	if err != nil {
		t.Fatalf("Stat: %s", err)
	}
	if s.FileCount != 0 {
		t.Errorf("FileCount = %d, want 0", s.FileCount)
	}
	if s.FreeBlocks != s.DataBlocks {
		t.Errorf("FreeBlocks = %d, want %d (DataBlocks, nothing allocated yet)", s.FreeBlocks, s.DataBlocks)
	}
}
