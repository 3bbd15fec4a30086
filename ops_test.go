package vsfs_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/vdiskfs/vsfs"
)

func formatAndMount(t *testing.T) *vsfs.Volume {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := vsfs.Format(path, vsfs.MinVolumeShift); err != nil {
		t.Fatalf("Format: %s", err)
	}
	v, err := vsfs.Mount(path)
	if err != nil {
		t.Fatalf("Mount: %s", err)
	}
	t.Cleanup(func() { v.Unmount() })
	return v
}

func TestCreateOpenAppendReadRoundTrip(t *testing.T) {
	v := formatAndMount(t)

	if err := v.Create("hello.txt"); err != nil {
		t.Fatalf("Create: %s", err)
	}

	fd, err := v.Open("hello.txt", vsfs.ModeAppend)
	if err != nil {
		t.Fatalf("Open(append): %s", err)
	}
	payload := []byte("hello, vsfs")
	if n, err := v.Append(fd, payload, len(payload)); err != nil || n != len(payload) {
		t.Fatalf("Append = (%d, %v), want (%d, nil)", n, err, len(payload))
	}
	if err := v.Close(fd); err != nil {
		t.Fatalf("Close: %s", err)
	}

	rfd, err := v.Open("hello.txt", vsfs.ModeRead)
	if err != nil {
		t.Fatalf("Open(read): %s", err)
	}
	size, err := v.Size(rfd)
	if err != nil {
		t.Fatalf("Size: %s", err)
	}
	if size != len(payload) {
		t.Fatalf("Size = %d, want %d", size, len(payload))
	}
	buf := make([]byte, size)
	n, err := v.Read(rfd, buf, size)
	if err != nil {
		t.Fatalf("Read: %s", err)
	}
	if !bytes.Equal(buf[:n], payload) {
		t.Fatalf("Read returned %q, want %q", buf[:n], payload)
	}
	if err := v.Close(rfd); err != nil {
		t.Fatalf("Close: %s", err)
	}
}

func TestAppendAcrossBlockBoundary(t *testing.T) {
	v := formatAndMount(t)
	if err := v.Create("big.bin"); err != nil {
		t.Fatal(err)
	}

	fd, err := v.Open("big.bin", vsfs.ModeAppend)
	if err != nil {
		t.Fatal(err)
	}

	// Exactly one block's worth should not allocate past the file's
	// initial block.
	full := bytes.Repeat([]byte{0xAB}, vsfs.BlockSize)
	if _, err := v.Append(fd, full, len(full)); err != nil {
		t.Fatalf("Append(1 block): %s", err)
	}

	// One more byte must allocate exactly one new block.
	statBefore, err := v.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Append(fd, []byte{0xFF}, 1); err != nil {
		t.Fatalf("Append(1 byte): %s", err)
	}
	statAfter, err := v.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if statBefore.FreeBlocks-statAfter.FreeBlocks != 1 {
		t.Fatalf("expected exactly 1 block consumed, consumed %d", statBefore.FreeBlocks-statAfter.FreeBlocks)
	}
	if err := v.Close(fd); err != nil {
		t.Fatal(err)
	}

	rfd, err := v.Open("big.bin", vsfs.ModeRead)
	if err != nil {
		t.Fatal(err)
	}
	size, err := v.Size(rfd)
	if err != nil {
		t.Fatal(err)
	}
	if size != vsfs.BlockSize+1 {
		t.Fatalf("Size = %d, want %d", size, vsfs.BlockSize+1)
	}
	buf := make([]byte, size)
	if _, err := v.Read(rfd, buf, size); err != nil {
		t.Fatalf("Read: %s", err)
	}
	if buf[vsfs.BlockSize] != 0xFF {
		t.Fatalf("last byte = %#x, want 0xff", buf[vsfs.BlockSize])
	}
}

func TestReadPastEndFails(t *testing.T) {
	v := formatAndMount(t)
	if err := v.Create("f"); err != nil {
		t.Fatal(err)
	}
	fd, err := v.Open("f", vsfs.ModeRead)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 1)
	if _, err := v.Read(fd, buf, 1); err == nil {
		t.Fatalf("Read past end of empty file: expected error, got nil")
	}
}

func TestCreateDuplicateNameFails(t *testing.T) {
	v := formatAndMount(t)
	if err := v.Create("dup"); err != nil {
		t.Fatal(err)
	}
	if err := v.Create("dup"); err == nil {
		t.Fatalf("Create(dup) twice: expected error, got nil")
	}
}

func TestOpenSameFileTwiceFails(t *testing.T) {
	v := formatAndMount(t)
	if err := v.Create("f"); err != nil {
		t.Fatal(err)
	}
	fd1, err := v.Open("f", vsfs.ModeRead)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close(fd1)

	if _, err := v.Open("f", vsfs.ModeRead); err == nil {
		t.Fatalf("second Open(f): expected error, got nil")
	}
}

func TestDeleteFreesBlocksAndClosesHandle(t *testing.T) {
	v := formatAndMount(t)
	if err := v.Create("f"); err != nil {
		t.Fatal(err)
	}
	fd, err := v.Open("f", vsfs.ModeAppend)
	if err != nil {
		t.Fatal(err)
	}
	data := bytes.Repeat([]byte{1}, vsfs.BlockSize+10)
	if _, err := v.Append(fd, data, len(data)); err != nil {
		t.Fatal(err)
	}

	statBefore, err := v.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Delete("f"); err != nil {
		t.Fatalf("Delete: %s", err)
	}
	statAfter, err := v.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if statAfter.FreeBlocks <= statBefore.FreeBlocks {
		t.Fatalf("Delete did not free blocks: before=%d after=%d", statBefore.FreeBlocks, statAfter.FreeBlocks)
	}
	if statAfter.FileCount != statBefore.FileCount-1 {
		t.Fatalf("FileCount = %d, want %d", statAfter.FileCount, statBefore.FileCount-1)
	}

	// fd was silently closed by Delete; using it now must fail.
	if err := v.Close(fd); err == nil {
		t.Fatalf("Close on a handle Delete should have closed: expected error, got nil")
	}
}

func TestListFiles(t *testing.T) {
	v := formatAndMount(t)
	if err := v.Create("a"); err != nil {
		t.Fatal(err)
	}
	if err := v.Create("b"); err != nil {
		t.Fatal(err)
	}
	files, err := v.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles: %s", err)
	}
	if len(files) != 2 {
		t.Fatalf("ListFiles returned %d entries, want 2", len(files))
	}
}

func TestFsckReportsConsistentOnFreshVolume(t *testing.T) {
	v := formatAndMount(t)
	if err := v.Create("a"); err != nil {
		t.Fatal(err)
	}

	report, err := v.Fsck()
	if err != nil {
		t.Fatalf("Fsck: %s", err)
	}
	if !report.Consistent {
		t.Fatalf("Fsck reported inconsistent on a freshly created file: %+v", report)
	}
}

func TestUnmountThenMountPreservesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := vsfs.Format(path, vsfs.MinVolumeShift); err != nil {
		t.Fatal(err)
	}

	v1, err := vsfs.Mount(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := v1.Create("persisted.txt"); err != nil {
		t.Fatal(err)
	}
	fd, err := v1.Open("persisted.txt", vsfs.ModeAppend)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v1.Append(fd, []byte("data"), 4); err != nil {
		t.Fatal(err)
	}
	if err := v1.Close(fd); err != nil {
		t.Fatal(err)
	}
	if err := v1.Unmount(); err != nil {
		t.Fatalf("Unmount: %s", err)
	}

	v2, err := vsfs.Mount(path)
	if err != nil {
		t.Fatalf("remount: %s", err)
	}
	defer v2.Unmount()

	rfd, err := v2.Open("persisted.txt", vsfs.ModeRead)
	if err != nil {
		t.Fatalf("Open after remount: %s", err)
	}
	size, err := v2.Size(rfd)
	if err != nil {
		t.Fatal(err)
	}
	if size != 4 {
		t.Fatalf("Size after remount = %d, want 4", size)
	}
	buf := make([]byte, 4)
	if _, err := v2.Read(rfd, buf, 4); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "data" {
		t.Fatalf("Read after remount = %q, want %q", buf, "data")
	}
}
