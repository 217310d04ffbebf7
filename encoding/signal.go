package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/readpack/errs"
)

// EncodeSignal appends samples to dst as zigzag varint deltas.
//
// The first sample is stored as a delta from zero and every following sample as
// the difference from its predecessor. Raw nanopore signal moves in small steps,
// so most samples take a single byte before the zstd stage.
func EncodeSignal(dst []byte, samples []int16) []byte {
	var temp [binary.MaxVarintLen32]byte

	if cap(dst)-len(dst) < len(samples) {
		grown := make([]byte, len(dst), len(dst)+len(samples)*2)
		copy(grown, dst)
		dst = grown
	}

	prev := int32(0)
	for _, s := range samples {
		delta := int32(s) - prev
		zigzag := uint32((delta << 1) ^ (delta >> 31)) //nolint: gosec
		n := binary.PutUvarint(temp[:], uint64(zigzag))
		dst = append(dst, temp[:n]...)
		prev = int32(s)
	}

	return dst
}

// DecodeSignal decodes exactly len(dst) samples from data into dst.
// Trailing bytes or a short payload are reported as ErrCorruptPayload.
func DecodeSignal(dst []int16, data []byte) error {
	offset := 0
	prev := int32(0)

	for i := range dst {
		zigzag, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return fmt.Errorf("%w: truncated signal at sample %d", errs.ErrCorruptPayload, i)
		}
		offset += n

		delta := int32(zigzag>>1) ^ -int32(zigzag&1) //nolint: gosec
		prev += delta
		dst[i] = int16(prev) //nolint: gosec
	}

	if offset != len(data) {
		return fmt.Errorf("%w: %d trailing signal bytes", errs.ErrCorruptPayload, len(data)-offset)
	}

	return nil
}

// AppendRawSignal appends samples as little-endian int16 values.
func AppendRawSignal(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s)) //nolint: gosec
	}

	return dst
}

// DecodeRawSignal decodes little-endian int16 values into dst. data must hold
// exactly len(dst) samples.
func DecodeRawSignal(dst []int16, data []byte) error {
	if len(data) != len(dst)*2 {
		return fmt.Errorf("%w: raw signal has %d bytes, want %d", errs.ErrCorruptPayload, len(data), len(dst)*2)
	}

	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(data[i*2:])) //nolint: gosec
	}

	return nil
}
