package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

type zstdCodec struct{}

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func (zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zstdReadCloser{d}, nil
}

func init() {
	Register(Zstd, zstdCodec{})
}
