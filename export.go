package vsfs

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vdiskfs/vsfs/compress"
)

// exportMagic identifies a vsfs export stream, independent of the
// compression algorithm wrapped around it.
const exportMagic = "VSFE"

// Export streams every allocated file on the volume to w as a simple
// self-describing archive: a 4-byte magic, then, per file, a 2-byte name
// length, the name, and an 8-byte size followed by that many bytes of file
// content. The whole stream is optionally wrapped in algo's compressor.
//
// This is not part of the distilled spec or the original C implementation
// (see SPEC_FULL.md §13): it exists so a vsfs volume — which otherwise has
// no path out except reading files one at a time — can be backed up to a
// single ordinary file.
func (v *Volume) Export(w io.Writer, algo compress.Algorithm) error {
	if err := v.checkMounted(); err != nil {
		return err
	}

	codec, err := compress.Get(algo)
	if err != nil {
		return err
	}
	cw, err := codec.NewWriter(w)
	if err != nil {
		return fmt.Errorf("vsfs: export: %w", err)
	}

	if _, err := cw.Write([]byte(exportMagic)); err != nil {
		return fmt.Errorf("vsfs: export: %w", err)
	}

	for i := range v.dir.entries {
		e := &v.dir.entries[i]
		if e.allocated != 1 {
			continue
		}
		name := e.name()

		fd, err := v.Open(name, ModeRead)
		if err != nil {
			return fmt.Errorf("vsfs: export %q: %w", name, err)
		}

		size, err := v.Size(fd)
		if err != nil {
			v.Close(fd)
			return fmt.Errorf("vsfs: export %q: %w", name, err)
		}

		nameHdr := make([]byte, 2+len(name)+8)
		binary.LittleEndian.PutUint16(nameHdr[0:2], uint16(len(name)))
		copy(nameHdr[2:2+len(name)], name)
		binary.LittleEndian.PutUint64(nameHdr[2+len(name):], uint64(size))
		if _, err := cw.Write(nameHdr); err != nil {
			v.Close(fd)
			return fmt.Errorf("vsfs: export %q: %w", name, err)
		}

		buf := make([]byte, BlockSize)
		remaining := size
		for remaining > 0 {
			chunk := remaining
			if chunk > len(buf) {
				chunk = len(buf)
			}
			n, err := v.Read(fd, buf, chunk)
			if err != nil {
				v.Close(fd)
				return fmt.Errorf("vsfs: export %q: %w", name, err)
			}
			if _, err := cw.Write(buf[:n]); err != nil {
				v.Close(fd)
				return fmt.Errorf("vsfs: export %q: %w", name, err)
			}
			remaining -= n
		}

		if err := v.Close(fd); err != nil {
			return err
		}
	}

	return cw.Close()
}

// Import reads a stream produced by Export and recreates each file it
// describes on the (already formatted and mounted) volume. Existing files
// with the same name are left untouched and cause Import to fail with
// ErrExists, rather than silently overwriting data.
func (v *Volume) Import(r io.Reader, algo compress.Algorithm) error {
	if err := v.checkMounted(); err != nil {
		return err
	}

	codec, err := compress.Get(algo)
	if err != nil {
		return err
	}
	cr, err := codec.NewReader(r)
	if err != nil {
		return fmt.Errorf("vsfs: import: %w", err)
	}
	defer cr.Close()

	magic := make([]byte, len(exportMagic))
	if _, err := io.ReadFull(cr, magic); err != nil {
		return fmt.Errorf("vsfs: import: %w", err)
	}
	if string(magic) != exportMagic {
		return fmt.Errorf("vsfs: import: not a vsfs export stream")
	}

	for {
		lenBuf := make([]byte, 2)
		_, err := io.ReadFull(cr, lenBuf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("vsfs: import: %w", err)
		}
		nameLen := binary.LittleEndian.Uint16(lenBuf)

		rest := make([]byte, int(nameLen)+8)
		if _, err := io.ReadFull(cr, rest); err != nil {
			return fmt.Errorf("vsfs: import: %w", err)
		}
		name := string(rest[:nameLen])
		size := binary.LittleEndian.Uint64(rest[nameLen:])

		if err := v.Create(name); err != nil {
			return fmt.Errorf("vsfs: import %q: %w", name, err)
		}
		fd, err := v.Open(name, ModeAppend)
		if err != nil {
			return fmt.Errorf("vsfs: import %q: %w", name, err)
		}

		buf := make([]byte, BlockSize)
		remaining := int64(size)
		for remaining > 0 {
			chunk := remaining
			if chunk > int64(len(buf)) {
				chunk = int64(len(buf))
			}
			if _, err := io.ReadFull(cr, buf[:chunk]); err != nil {
				v.Close(fd)
				return fmt.Errorf("vsfs: import %q: %w", name, err)
			}
			if _, err := v.Append(fd, buf, int(chunk)); err != nil {
				v.Close(fd)
				return fmt.Errorf("vsfs: import %q: %w", name, err)
			}
			remaining -= chunk
		}

		if err := v.Close(fd); err != nil {
			return err
		}
	}
}
