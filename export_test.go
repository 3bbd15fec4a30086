package vsfs_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/vdiskfs/vsfs"
	"github.com/vdiskfs/vsfs/compress"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := formatAndMount(t)

	files := map[string]string{
		"a.txt": "contents of a",
		"b.bin": "contents of b, a little longer this time",
	}
	for name, content := range files {
		if err := src.Create(name); err != nil {
			t.Fatalf("Create(%s): %s", name, err)
		}
		fd, err := src.Open(name, vsfs.ModeAppend)
		if err != nil {
			t.Fatalf("Open(%s): %s", name, err)
		}
		if _, err := src.Append(fd, []byte(content), len(content)); err != nil {
			t.Fatalf("Append(%s): %s", name, err)
		}
		if err := src.Close(fd); err != nil {
			t.Fatalf("Close(%s): %s", name, err)
		}
	}

	var archive bytes.Buffer
	if err := src.Export(&archive, compress.Gzip); err != nil {
		t.Fatalf("Export: %s", err)
	}

	dstPath := filepath.Join(t.TempDir(), "dst.img")
	if err := vsfs.Format(dstPath, vsfs.MinVolumeShift); err != nil {
		t.Fatal(err)
	}
	dst, err := vsfs.Mount(dstPath)
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Unmount()

	if err := dst.Import(&archive, compress.Gzip); err != nil {
		t.Fatalf("Import: %s", err)
	}

	for name, content := range files {
		fd, err := dst.Open(name, vsfs.ModeRead)
		if err != nil {
			t.Fatalf("Open(%s) after import: %s", name, err)
		}
		size, err := dst.Size(fd)
		if err != nil {
			t.Fatal(err)
		}
		buf := make([]byte, size)
		if _, err := dst.Read(fd, buf, size); err != nil {
			t.Fatalf("Read(%s) after import: %s", name, err)
		}
		if string(buf) != content {
			t.Errorf("%s: got %q, want %q", name, buf, content)
		}
		if err := dst.Close(fd); err != nil {
			t.Fatal(err)
		}
	}
}
