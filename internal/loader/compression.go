package loader

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies an optional compression wrapper around a text
// format file.
type Compression int

const (
	// CompressionNone marks an uncompressed file.
	CompressionNone Compression = iota
	// CompressionGZ is gzip.
	CompressionGZ
	// CompressionBZ2 is bzip2.
	CompressionBZ2
	// CompressionXZ is xz.
	CompressionXZ
	// CompressionZSTD is zstandard.
	CompressionZSTD
)

// Compression extensions.
const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// compressionFromPath detects a compression wrapper from the file name.
func compressionFromPath(path string) Compression {
	switch lower := strings.ToLower(path); {
	case strings.HasSuffix(lower, extGZ):
		return CompressionGZ
	case strings.HasSuffix(lower, extBZ2):
		return CompressionBZ2
	case strings.HasSuffix(lower, extXZ):
		return CompressionXZ
	case strings.HasSuffix(lower, extZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// newDecompressedReader wraps reader with the matching decompressor. The
// returned close function releases decompressor state and must be called
// even on error paths; it never closes the underlying reader.
func newDecompressedReader(reader io.Reader, c Compression) (io.Reader, func() error, error) {
	switch c {
	case CompressionNone:
		return reader, func() error { return nil }, nil
	case CompressionGZ:
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return gz, gz.Close, nil
	case CompressionBZ2:
		// bzip2 readers hold no closeable state.
		return bzip2.NewReader(reader), func() error { return nil }, nil
	case CompressionXZ:
		xzr, err := xz.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("create xz reader: %w", err)
		}
		return xzr, func() error { return nil }, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("create zstd reader: %w", err)
		}
		return dec, func() error { dec.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression: %v", c)
	}
}
