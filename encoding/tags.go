package encoding

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
)

// EncodeTags appends a string-keyed tag map to dst.
//
// Keys are written in sorted order followed by the values in the same order,
// each half as an EncodeStrings table, so equal maps always produce equal bytes.
func EncodeTags(dst []byte, tags map[string]string, engine endian.EndianEngine) ([]byte, error) {
	keys := slices.Sorted(maps.Keys(tags))

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = tags[k]
	}

	dst, err := EncodeStrings(dst, keys, engine)
	if err != nil {
		return nil, fmt.Errorf("tag keys: %w", err)
	}

	dst, err = EncodeStrings(dst, values, engine)
	if err != nil {
		return nil, fmt.Errorf("tag values: %w", err)
	}

	return dst, nil
}

// DecodeTags decodes a map written by EncodeTags and returns it with the number
// of bytes consumed. An empty map is returned as a non-nil empty map.
func DecodeTags(data []byte, engine endian.EndianEngine) (map[string]string, int, error) {
	keys, n, err := DecodeStrings(data, engine)
	if err != nil {
		return nil, 0, fmt.Errorf("tag keys: %w", err)
	}

	values, m, err := DecodeStrings(data[n:], engine)
	if err != nil {
		return nil, 0, fmt.Errorf("tag values: %w", err)
	}

	if len(keys) != len(values) {
		return nil, 0, fmt.Errorf("%w: %d tag keys but %d values", errs.ErrCorruptPayload, len(keys), len(values))
	}

	tags := make(map[string]string, len(keys))
	for i, k := range keys {
		tags[k] = values[i]
	}

	return tags, n + m, nil
}
