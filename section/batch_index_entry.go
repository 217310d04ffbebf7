package section

import (
	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
)

// BatchIndexEntry records the location of one batch block in the container.
// It is a fixed size of 32 bytes and uses absolute offsets.
//
// A batch block is the compressed row payload immediately followed by the
// signal payload:
//
//	data[entry.Offset : entry.Offset+entry.RowsSize]                        rows
//	data[entry.Offset+entry.RowsSize : entry.Offset+entry.BlockSize()]      signal
type BatchIndexEntry struct {
	// Offset is the absolute byte offset of the batch block in the file.
	Offset uint64 // 8 bytes, offset 0-7

	// RowsSize is the stored (compressed) size of the row payload.
	RowsSize uint32 // 4 bytes, offset 8-11

	// SignalSize is the stored size of the signal payload.
	SignalSize uint32 // 4 bytes, offset 12-15

	// RowCount is the number of reads in the batch.
	RowCount uint32 // 4 bytes, offset 16-19

	// Reserved for future use, must be set to 0.
	Reserved uint32 // 4 bytes, offset 20-23

	// Checksum is the xxHash64 of the row payload followed by the signal payload.
	Checksum uint64 // 8 bytes, offset 24-31
}

// BlockSize returns the total stored size of the batch block.
func (e BatchIndexEntry) BlockSize() uint64 {
	return uint64(e.RowsSize) + uint64(e.SignalSize)
}

// WriteToSlice writes the index entry to a byte slice using the specified endian engine.
// The slice must be at least 32 bytes long.
func (e *BatchIndexEntry) WriteToSlice(b []byte, engine endian.EndianEngine) error {
	if len(b) < BatchIndexEntrySize {
		return errs.ErrInvalidIndexEntrySize
	}

	engine.PutUint64(b[0:8], e.Offset)
	engine.PutUint32(b[8:12], e.RowsSize)
	engine.PutUint32(b[12:16], e.SignalSize)
	engine.PutUint32(b[16:20], e.RowCount)
	engine.PutUint32(b[20:24], e.Reserved)
	engine.PutUint64(b[24:32], e.Checksum)

	return nil
}

// AppendTo appends the encoded entry to dst.
func (e *BatchIndexEntry) AppendTo(dst []byte, engine endian.EndianEngine) []byte {
	dst = engine.AppendUint64(dst, e.Offset)
	dst = engine.AppendUint32(dst, e.RowsSize)
	dst = engine.AppendUint32(dst, e.SignalSize)
	dst = engine.AppendUint32(dst, e.RowCount)
	dst = engine.AppendUint32(dst, e.Reserved)
	dst = engine.AppendUint64(dst, e.Checksum)

	return dst
}

// ParseBatchIndexEntry parses a batch index entry from a byte slice.
func ParseBatchIndexEntry(data []byte, engine endian.EndianEngine) (BatchIndexEntry, error) {
	if len(data) < BatchIndexEntrySize {
		return BatchIndexEntry{}, errs.ErrInvalidIndexEntrySize
	}

	return BatchIndexEntry{
		Offset:     engine.Uint64(data[0:8]),
		RowsSize:   engine.Uint32(data[8:12]),
		SignalSize: engine.Uint32(data[12:16]),
		RowCount:   engine.Uint32(data[16:20]),
		Reserved:   engine.Uint32(data[20:24]),
		Checksum:   engine.Uint64(data[24:32]),
	}, nil
}
