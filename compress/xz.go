package compress

import (
	"io"

	"github.com/ulikunitz/xz"
)

type xzCodec struct{}

func (xzCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}

func (xzCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

func init() {
	Register(XZ, xzCodec{})
}
