package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
)

// MaxStringLength is the longest string a dictionary or run-info field can hold.
const MaxStringLength = math.MaxUint16

// MaxStringCount is the largest number of strings in one table.
const MaxStringCount = math.MaxUint16

// EncodeStrings appends a length-prefixed string table to dst.
// Format: [Count: uint16] [Len1: uint16][Str1: UTF-8] [Len2: uint16][Str2: UTF-8] ...
//
// Both the pore-type dictionary and the string fields of run-info entries use
// this layout.
func EncodeStrings(dst []byte, strs []string, engine endian.EndianEngine) ([]byte, error) {
	if len(strs) > MaxStringCount {
		return nil, fmt.Errorf("%w: string count %d exceeds maximum %d", errs.ErrDictionaryFull, len(strs), MaxStringCount)
	}

	size := 2
	for _, s := range strs {
		if len(s) > MaxStringLength {
			return nil, fmt.Errorf("%w: %d bytes, maximum %d", errs.ErrStringTooLong, len(s), MaxStringLength)
		}
		size += 2 + len(s)
	}

	if cap(dst)-len(dst) < size {
		grown := make([]byte, len(dst), len(dst)+size)
		copy(grown, dst)
		dst = grown
	}

	dst = engine.AppendUint16(dst, uint16(len(strs))) //nolint: gosec
	for _, s := range strs {
		dst = engine.AppendUint16(dst, uint16(len(s))) //nolint: gosec
		dst = append(dst, s...)
	}

	return dst, nil
}

// DecodeStrings decodes a table written by EncodeStrings.
// It returns the strings and the number of bytes consumed.
func DecodeStrings(data []byte, engine endian.EndianEngine) ([]string, int, error) {
	offset := 0

	if len(data) < 2 {
		return nil, 0, fmt.Errorf("%w: cannot read string count (need 2 bytes, have %d)", errs.ErrCorruptPayload, len(data))
	}

	count := int(engine.Uint16(data))
	offset += 2

	strs := make([]string, count)
	for i := range count {
		if len(data) < offset+2 {
			return nil, 0, fmt.Errorf("%w: cannot read length of string %d at offset %d", errs.ErrCorruptPayload, i, offset)
		}

		n := int(engine.Uint16(data[offset:]))
		offset += 2

		if len(data) < offset+n {
			return nil, 0, fmt.Errorf("%w: string %d needs %d bytes at offset %d, have %d total",
				errs.ErrCorruptPayload, i, n, offset, len(data))
		}

		strs[i] = string(data[offset : offset+n])
		offset += n
	}

	return strs, offset, nil
}
