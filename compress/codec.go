// Package compress provides the compression codecs used by packed WKB
// blobs: Zstandard, S2, LZ4 and a pass-through, selected by a one-byte
// compression type stored in the blob header.
//
// WKB payloads compress well: type codes, flag bytes and timestamps
// repeat heavily across the values of a packed blob. Zstd gives the
// best ratio, S2 and LZ4 trade ratio for speed, and the no-op codec
// serves blobs that are stored uncompressed.
package compress

import (
	"fmt"

	"github.com/arloliu/tempus/errs"
)

// CompressionType identifies a compression codec in a packed blob
// header.
type CompressionType uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone CompressionType = 0x1
	// CompressionZstd compresses with Zstandard.
	CompressionZstd CompressionType = 0x2
	// CompressionS2 compresses with S2.
	CompressionS2 CompressionType = 0x3
	// CompressionLZ4 compresses with LZ4.
	CompressionLZ4 CompressionType = 0x4
)

// String returns the name of the compression type.
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether the compression type is a member of the
// enumeration.
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// Compressor compresses a complete payload.
//
// The returned slice is newly allocated and owned by the caller; the
// input is never modified. Internal buffers may be pooled.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// The input must have been produced by the matching algorithm; corrupt
// or mismatched data returns an error.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines compression and decompression. All implementations in
// this package are stateless values safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[CompressionType]Codec{
	CompressionNone: NewNoOpCompressor(),
	CompressionZstd: NewZstdCompressor(),
	CompressionS2:   NewS2Compressor(),
	CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in codec for the given compression type.
func GetCodec(ct CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[ct]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: 0x%02x", errs.ErrInvalidCompression, uint8(ct))
}

// Ratio returns the compression ratio compressed/original; values below
// 1.0 indicate a size reduction.
func Ratio(originalSize, compressedSize int) float64 {
	if originalSize == 0 {
		return 0
	}

	return float64(compressedSize) / float64(originalSize)
}
