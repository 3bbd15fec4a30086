package compress_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/vdiskfs/vsfs/compress"
)

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]compress.Algorithm{
		"":     compress.None,
		"none": compress.None,
		"gzip": compress.Gzip,
		"gz":   compress.Gzip,
		"xz":   compress.XZ,
		"zstd": compress.Zstd,
	}
	for in, want := range cases {
		got, err := compress.ParseAlgorithm(in)
		if err != nil {
			t.Errorf("ParseAlgorithm(%q): %s", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAlgorithm(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := compress.ParseAlgorithm("bogus"); err == nil {
		t.Errorf("ParseAlgorithm(bogus): expected error, got nil")
	}
}

func TestEachCodecRoundTrips(t *testing.T) {
	algos := []compress.Algorithm{compress.None, compress.Gzip, compress.XZ, compress.Zstd}
	payload := bytes.Repeat([]byte("vsfs export payload "), 200)

	for _, algo := range algos {
		algo := algo
		t.Run(algo.String(), func(t *testing.T) {
			codec, err := compress.Get(algo)
			if err != nil {
				t.Fatalf("Get(%s): %s", algo, err)
			}

			var buf bytes.Buffer
			w, err := codec.NewWriter(&buf)
			if err != nil {
				t.Fatalf("NewWriter: %s", err)
			}
			if _, err := w.Write(payload); err != nil {
				t.Fatalf("Write: %s", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close writer: %s", err)
			}

			r, err := codec.NewReader(&buf)
			if err != nil {
				t.Fatalf("NewReader: %s", err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll: %s", err)
			}
			if err := r.Close(); err != nil {
				t.Fatalf("Close reader: %s", err)
			}

			if !bytes.Equal(got, payload) {
				t.Errorf("round trip mismatch for %s: got %d bytes, want %d", algo, len(got), len(payload))
			}
		})
	}
}

func TestGetUnregisteredAlgorithmFails(t *testing.T) {
	if _, err := compress.Get(compress.Algorithm(99)); err == nil {
		t.Errorf("Get(99): expected error, got nil")
	}
}
