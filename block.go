package vsfs

import (
	"fmt"
	"io"
)

// blockDevice is a thin façade over a host byte container offering
// fixed-size block read/write at a block index. It is the only place in the
// package that talks to the host container directly; every cache goes
// through it. It does no caching of its own — that is the caller's concern,
// per spec.md §4.1.
type blockDevice struct {
	ra io.ReaderAt
	wa io.WriterAt
}

func newBlockDevice(ra io.ReaderAt, wa io.WriterAt) *blockDevice {
	return &blockDevice{ra: ra, wa: wa}
}

// readBlock reads the block at the given 0-based index, failing if the
// underlying I/O returns a short count.
func (d *blockDevice) readBlock(index int) ([]byte, error) {
	buf := make([]byte, BlockSize)
	n, err := d.ra.ReadAt(buf, int64(index)*BlockSize)
	if err != nil {
		return nil, fmt.Errorf("vsfs: read block %d: %w", index, err)
	}
	if n != BlockSize {
		return nil, fmt.Errorf("vsfs: short read of block %d (%d of %d bytes)", index, n, BlockSize)
	}
	return buf, nil
}

// writeBlock writes exactly one block's worth of data at the given 0-based
// index, failing if the underlying I/O returns a short count.
func (d *blockDevice) writeBlock(index int, data []byte) error {
	if len(data) != BlockSize {
		return fmt.Errorf("vsfs: writeBlock(%d): data must be exactly %d bytes, got %d", index, BlockSize, len(data))
	}
	n, err := d.wa.WriteAt(data, int64(index)*BlockSize)
	if err != nil {
		return fmt.Errorf("vsfs: write block %d: %w", index, err)
	}
	if n != BlockSize {
		return fmt.Errorf("vsfs: short write of block %d (%d of %d bytes)", index, n, BlockSize)
	}
	return nil
}
