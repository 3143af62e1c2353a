package exchange

import (
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// decompressor is the closed tagged union design note §9 calls for:
// one concrete case per supported coding, no dynamic Reader dispatch,
// so the hot (identity, no decompression) path never allocates an
// interface value it doesn't need. Backed by klauspost/compress, the
// corpus's own answer (via the teacher's go.mod) to "a fast flate/gzip
// implementation"; zstd is added from the same module for the coding
// the spec names that the teacher itself never wires up.
type decompressor struct {
	kind   Compression
	flateR io.ReadCloser
	gzipR  *gzip.Reader
	zstdR  *zstd.Decoder
}

// newDecompressor wraps r with the decoder named by kind. Callers must
// have already rejected CompressionCompress/CompressionXCompress with
// CompressionNotSupported before calling this; it panics on those
// kinds as a programmer-error guard rather than silently passing
// through.
func newDecompressor(kind Compression, r io.Reader) (*decompressor, error) {
	switch kind {
	case CompressionIdentity:
		return nil, nil
	case CompressionDeflate:
		return &decompressor{kind: kind, flateR: flate.NewReader(r)}, nil
	case CompressionGzip, CompressionXGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, wrapErr(DecompressionFailure, err)
		}
		return &decompressor{kind: kind, gzipR: gr}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, wrapErr(DecompressionFailure, err)
		}
		return &decompressor{kind: kind, zstdR: zr}, nil
	default:
		panic("exchange: newDecompressor called with an unsupported coding")
	}
}

func (d *decompressor) Read(p []byte) (int, error) {
	var n int
	var err error
	switch d.kind {
	case CompressionDeflate:
		n, err = d.flateR.Read(p)
	case CompressionGzip, CompressionXGzip:
		n, err = d.gzipR.Read(p)
	case CompressionZstd:
		n, err = d.zstdR.Read(p)
	}
	if err == io.EOF {
		// BodyReader's contract (like the identity and chunked paths)
		// signals exhaustion with (n, nil), never an io.EOF sentinel.
		return n, nil
	}
	if err != nil {
		return n, wrapErr(DecompressionFailure, err)
	}
	return n, nil
}

func (d *decompressor) Close() error {
	switch d.kind {
	case CompressionDeflate:
		return d.flateR.Close()
	case CompressionGzip, CompressionXGzip:
		return d.gzipR.Close()
	case CompressionZstd:
		d.zstdR.Close()
		return nil
	}
	return nil
}
