package compress

// ZstdCompressor compresses with Zstandard. It gives the best ratio of
// the built-in codecs and suits archived packed blobs.
//
// Two implementations exist behind build tags: the default pure-Go
// encoder from klauspost/compress, and a cgo binding to libzstd
// (build tag cgo_zstd) for throughput-critical deployments.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor returns the Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
