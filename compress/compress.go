// Package compress picks a streaming compressor/decompressor by algorithm
// name. It exists solely to serve vsfs's Export/Import backup feature (see
// SPEC_FULL.md §13) — the on-disk block layout itself is bit-exact and is
// never compressed.
//
// Modeled on the teacher package's comp.go enum-with-String plus one file
// per codec.
package compress

import (
	"fmt"
	"io"
)

// Algorithm identifies a compression codec.
type Algorithm uint8

const (
	// None passes bytes through unmodified.
	None Algorithm = iota
	// Gzip is github.com/klauspost/compress/gzip, a drop-in faster gzip.
	Gzip
	// XZ is github.com/ulikunitz/xz.
	XZ
	// Zstd is github.com/klauspost/compress/zstd.
	Zstd
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case XZ:
		return "xz"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm maps a CLI-facing name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "none":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "xz":
		return XZ, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("compress: unknown algorithm %q", s)
	}
}

var registry = map[Algorithm]Codec{
	None: passthroughCodec{},
}

// Codec wraps a byte stream for writing/reading in a particular
// compression format.
type Codec interface {
	NewWriter(w io.Writer) (io.WriteCloser, error)
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Register adds or replaces the codec used for an Algorithm. Called from
// each codec file's init().
func Register(a Algorithm, c Codec) {
	registry[a] = c
}

// Get returns the codec registered for a, or an error if none is.
func Get(a Algorithm) (Codec, error) {
	c, ok := registry[a]
	if !ok {
		return nil, fmt.Errorf("compress: no codec registered for %s", a)
	}
	return c, nil
}
