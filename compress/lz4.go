package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; the compressor
// keeps internal hash tables that benefit from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses with LZ4 block compression. The block is
// framed with a fixed header carrying the original length so
// decompression can size its output buffer exactly.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor returns the LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// lz4HeaderSize frames the original payload length before the block.
const lz4HeaderSize = 4

// Compress compresses the input data as a single LZ4 block.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	compressor := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(compressor)

	buf := make([]byte, lz4HeaderSize+lz4.CompressBlockBound(len(data)))
	n, err := compressor.CompressBlock(data, buf[lz4HeaderSize:])
	if err != nil {
		return nil, err
	}

	size := uint32(len(data))
	buf[0] = byte(size)
	buf[1] = byte(size >> 8)
	buf[2] = byte(size >> 16)
	buf[3] = byte(size >> 24)

	return buf[:lz4HeaderSize+n], nil
}

// Decompress decompresses a framed LZ4 block.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < lz4HeaderSize {
		return nil, errors.New("lz4: truncated block header")
	}

	size := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data[lz4HeaderSize:], out)
	if err != nil {
		return nil, err
	}

	return out[:n], nil
}
