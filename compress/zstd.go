package compress

// ZstdCompressor provides Zstandard compression.
//
// It is the default row codec and the second stage of VBZ signal compression,
// where it squeezes the zigzag varint delta stream of each read.
//
// The pure-Go klauspost implementation is used unless the binary is built with
// the cgozstd tag, which switches to the libzstd binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
