package anvil

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression is the scheme byte stored in front of every chunk payload.
type Compression byte

const (
	CompressionNone Compression = 0
	CompressionGzip Compression = 1
	CompressionZlib Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	}
	return fmt.Sprintf("scheme %d", byte(c))
}

// A Decompressor wraps a compressed payload stream.
type Decompressor func(io.Reader) (io.ReadCloser, error)

var decompressors = map[Compression]Decompressor{
	CompressionGzip: func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	CompressionZlib: zlib.NewReader,
}

// RegisterCompression installs the decompressor used for scheme c. It is not safe to
// call concurrently with reads.
func RegisterCompression(c Compression, d Decompressor) {
	decompressors[c] = d
}

// NewReader returns a reader over the decompressed payload. Schemes without a
// registered decompressor, including CompressionNone, pass the payload through.
func (c Compression) NewReader(r io.Reader) (io.ReadCloser, error) {
	d, ok := decompressors[c]
	if !ok {
		return io.NopCloser(r), nil
	}
	return d(r)
}
