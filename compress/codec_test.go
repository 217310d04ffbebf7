package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/arloliu/readpack/format"
	"github.com/stretchr/testify/require"
)

var errMismatch = errors.New("decompressed data does not match")

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

// rowPayload mimics a column block: repetitive channel/well columns and float calibration values.
func rowPayload(rows int) []byte {
	var b []byte
	for i := range rows {
		b = binary.LittleEndian.AppendUint16(b, uint16(i%512+1)) //nolint: gosec
	}
	for i := range rows {
		b = append(b, byte(i%4+1))
	}
	for range rows {
		b = binary.LittleEndian.AppendUint32(b, 0x3F800000)
	}

	return b
}

func TestCreateCodec(t *testing.T) {
	for _, c := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		codec, err := CreateCodec(c, "row")
		require.NoError(t, err)
		require.NotNil(t, codec)

		shared, err := GetCodec(c)
		require.NoError(t, err)
		require.IsType(t, codec, shared)
	}

	_, err := CreateCodec(format.CompressionType(0x9), "row")
	require.ErrorContains(t, err, "invalid row compression")

	_, err = GetCodec(format.CompressionType(0))
	require.Error(t, err)
}

func TestCompressionStats(t *testing.T) {
	stats := CompressionStats{Algorithm: format.CompressionZstd, OriginalSize: 1000, CompressedSize: 250}
	require.InDelta(t, 0.25, stats.CompressionRatio(), 1e-9)
	require.InDelta(t, 75.0, stats.SpaceSavings(), 1e-9)

	empty := CompressionStats{}
	require.Zero(t, empty.CompressionRatio())
	require.Zero(t, empty.SpaceSavings())
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)

			compressed, err = codec.Compress([]byte{})
			require.NoError(t, err)

			decompressed, err = codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "single_byte", data: []byte{0x42}},
		{name: "binary", data: []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}},
		{name: "row_payload", data: rowPayload(4000)},
		{name: "repeated_pore_names", data: bytes.Repeat([]byte("\x06\x00pore_A"), 500)},
		{
			name: "pseudo_random",
			data: func() []byte {
				data := make([]byte, 4096)
				for i := range data {
					data[i] = byte((i*7 + i*i) % 251)
				}

				return data
			}(),
		},
		{name: "zeros_1mb", data: make([]byte, 1024*1024)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotNil(t, compressed)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{name: "random_bytes", data: []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{name: "text_as_compressed", data: []byte("this is not compressed data")},
		{name: "truncated", data: []byte{0x10}},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			if codecName == "NoOp" {
				t.Skip("NoOp codec doesn't validate data")
			}

			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					_, err := codec.Decompress(input.data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestLZ4_SizeMismatch(t *testing.T) {
	codec := NewLZ4Compressor()

	compressed, err := codec.Compress(rowPayload(100))
	require.NoError(t, err)

	binary.LittleEndian.PutUint32(compressed, 10)
	_, err = codec.Decompress(compressed)
	require.Error(t, err)
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 16
	data := rowPayload(256)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			var wg sync.WaitGroup
			errCh := make(chan error, numGoroutines*2)

			for range numGoroutines {
				wg.Add(1)
				go func() {
					defer wg.Done()
					c, err := codec.Compress(data)
					if err != nil {
						errCh <- err
						return
					}
					d, err := codec.Decompress(c)
					if err != nil {
						errCh <- err
						return
					}
					if !bytes.Equal(d, data) {
						errCh <- errMismatch
					}
				}()

				wg.Add(1)
				go func() {
					defer wg.Done()
					d, err := codec.Decompress(compressed)
					if err != nil {
						errCh <- err
						return
					}
					if !bytes.Equal(d, data) {
						errCh <- errMismatch
					}
				}()
			}

			wg.Wait()
			close(errCh)

			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}
