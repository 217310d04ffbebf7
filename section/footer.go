package section

import (
	"fmt"
	"math"

	"github.com/arloliu/readpack/encoding"
	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/internal/hash"
)

// Footer is the trailing section of a readpack container.
//
// Layout:
//
//	creator           uint16 length + bytes
//	pore types        string table (uint16 count, uint16 length-prefixed strings)
//	run info count    uint32
//	run infos         uint32 length + encoded run info, repeated
//	batch count       uint32
//	batch index       BatchIndexEntrySize bytes per batch
//	checksum          uint64 xxHash64 of everything above
type Footer struct {
	Creator   string
	PoreTypes []string
	// RunInfos holds each run info in its encoded form; the container package owns the layout.
	RunInfos [][]byte
	Batches  []BatchIndexEntry
}

// AppendTo appends the encoded footer to dst.
func (f *Footer) AppendTo(dst []byte, engine endian.EndianEngine) ([]byte, error) {
	start := len(dst)

	dst, err := encoding.EncodeStrings(dst, []string{f.Creator}, engine)
	if err != nil {
		return dst, fmt.Errorf("creator: %w", err)
	}

	dst, err = encoding.EncodeStrings(dst, f.PoreTypes, engine)
	if err != nil {
		return dst, fmt.Errorf("pore types: %w", err)
	}

	if len(f.RunInfos) > math.MaxInt16 {
		return dst, fmt.Errorf("%w: %d run infos", errs.ErrDictionaryFull, len(f.RunInfos))
	}

	dst = engine.AppendUint32(dst, uint32(len(f.RunInfos))) //nolint: gosec
	for _, ri := range f.RunInfos {
		dst = engine.AppendUint32(dst, uint32(len(ri))) //nolint: gosec
		dst = append(dst, ri...)
	}

	dst = engine.AppendUint32(dst, uint32(len(f.Batches))) //nolint: gosec
	for i := range f.Batches {
		dst = f.Batches[i].AppendTo(dst, engine)
	}

	dst = engine.AppendUint64(dst, hash.Checksum(dst[start:]))

	return dst, nil
}

// ParseFooter decodes a footer and verifies its checksum.
func ParseFooter(data []byte, engine endian.EndianEngine) (*Footer, error) {
	if len(data) < footerChecksumSize {
		return nil, fmt.Errorf("%w: footer is %d bytes", errs.ErrCorruptPayload, len(data))
	}

	body := data[:len(data)-footerChecksumSize]
	want := engine.Uint64(data[len(data)-footerChecksumSize:])
	if got := hash.Checksum(body); got != want {
		return nil, fmt.Errorf("%w: footer checksum 0x%016x, want 0x%016x", errs.ErrChecksumMismatch, got, want)
	}

	f := &Footer{}

	creator, n, err := encoding.DecodeStrings(body, engine)
	if err != nil {
		return nil, fmt.Errorf("creator: %w", err)
	}
	if len(creator) != 1 {
		return nil, fmt.Errorf("%w: creator table has %d entries", errs.ErrCorruptPayload, len(creator))
	}
	f.Creator = creator[0]
	body = body[n:]

	f.PoreTypes, n, err = encoding.DecodeStrings(body, engine)
	if err != nil {
		return nil, fmt.Errorf("pore types: %w", err)
	}
	body = body[n:]

	r := encoding.NewColumnReader(body, engine)

	runInfoCount := int(r.Uint32())
	if runInfoCount > math.MaxInt16 {
		return nil, fmt.Errorf("%w: %d run infos", errs.ErrCorruptPayload, runInfoCount)
	}
	f.RunInfos = make([][]byte, 0, runInfoCount)
	for range runInfoCount {
		size := int(r.Uint32())
		f.RunInfos = append(f.RunInfos, r.Raw(size))
	}

	batchCount := int(r.Uint32())
	if r.Err() != nil {
		return nil, r.Err()
	}
	if r.Remaining() != batchCount*BatchIndexEntrySize {
		return nil, fmt.Errorf("%w: batch index is %d bytes, want %d", errs.ErrCorruptPayload, r.Remaining(), batchCount*BatchIndexEntrySize)
	}

	f.Batches = make([]BatchIndexEntry, batchCount)
	for i := range f.Batches {
		f.Batches[i], err = ParseBatchIndexEntry(r.Raw(BatchIndexEntrySize), engine)
		if err != nil {
			return nil, err
		}
	}

	return f, nil
}
