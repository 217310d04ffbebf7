// Package compress provides the byte-level codecs used for readpack batch payloads.
//
// Every batch block holds a row payload and a signal payload. The row payload is
// compressed with the codec named by the file's row compression flag:
//   - None: stored as-is
//   - Zstd: best ratio, the default
//   - S2: faster, lower ratio
//   - LZ4: fastest decode, size-prefixed block
//
// VBZ signal compression runs each read's zigzag varint delta stream through the
// Zstd codec.
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// Zstd uses the pure-Go klauspost implementation. Building with -tags cgozstd
// (and cgo enabled) switches to libzstd through valyala/gozstd.
//
// All codecs are stateless values backed by sync.Pool and are safe for concurrent use.
package compress
