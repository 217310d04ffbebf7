package container

import (
	"fmt"

	"github.com/arloliu/readpack/compress"
	"github.com/arloliu/readpack/encoding"
	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/format"
	"github.com/arloliu/readpack/internal/pool"
)

// ReadBatch is one loaded batch. Row records are decoded eagerly; signals are
// decoded per read on request from the block held until Release.
type ReadBatch struct {
	rows         *decodedRows
	signalData   []byte
	chunkOffsets []uint64
	block        *pool.ByteBuffer

	tableVersion      uint16
	signalCompression format.SignalCompression
	signalCodec       compress.Codec
}

func newReadBatch(rows *decodedRows, signalData []byte, block *pool.ByteBuffer, r *Reader) (*ReadBatch, error) {
	offsets := make([]uint64, len(rows.chunkSizes)+1)
	for i, size := range rows.chunkSizes {
		offsets[i+1] = offsets[i] + uint64(size)
	}
	if offsets[len(offsets)-1] != uint64(len(signalData)) {
		return nil, fmt.Errorf("%w: signal chunks cover %d bytes, payload has %d",
			errs.ErrCorruptPayload, offsets[len(offsets)-1], len(signalData))
	}

	return &ReadBatch{
		rows:              rows,
		signalData:        signalData,
		chunkOffsets:      offsets,
		block:             block,
		tableVersion:      r.header.RowInfoVersion,
		signalCompression: r.header.Flag.GetSignalCompression(),
		signalCodec:       r.signalCodec,
	}, nil
}

// RowCount returns the number of reads in the batch.
func (b *ReadBatch) RowCount() int {
	if b.rows == nil {
		return 0
	}

	return len(b.rows.records)
}

func (b *ReadBatch) checkRow(row int) error {
	if b.rows == nil {
		return errs.ErrReaderClosed
	}
	if row < 0 || row >= len(b.rows.records) {
		return fmt.Errorf("%w: %d of %d", errs.ErrInvalidRowIndex, row, len(b.rows.records))
	}

	return nil
}

// RowInfo returns the metadata of row. version is the row-info layout the
// caller was built against; versions newer than this package understands are
// rejected. The second result is the table version the file was written with.
func (b *ReadBatch) RowInfo(row int, version uint16) (RowRecord, uint16, error) {
	if version == 0 || version > format.RowInfoVersion {
		return RowRecord{}, 0, fmt.Errorf("%w: %d, newest is %d", errs.ErrUnsupportedRowInfoVersion, version, format.RowInfoVersion)
	}
	if err := b.checkRow(row); err != nil {
		return RowRecord{}, 0, err
	}

	return b.rows.records[row], b.tableVersion, nil
}

// CompleteSampleCount returns the number of signal samples of row.
func (b *ReadBatch) CompleteSampleCount(row int) (uint64, error) {
	if err := b.checkRow(row); err != nil {
		return 0, err
	}

	return b.rows.numSamples[row], nil
}

// CompleteSignal decodes the signal of row into dst, which must hold at least
// CompleteSampleCount(row) samples.
func (b *ReadBatch) CompleteSignal(row int, dst []int16) error {
	if err := b.checkRow(row); err != nil {
		return err
	}

	count := b.rows.numSamples[row]
	if uint64(len(dst)) < count {
		return fmt.Errorf("%w: row %d has %d samples, buffer holds %d", errs.ErrSignalBufferTooSmall, row, count, len(dst))
	}
	dst = dst[:count]

	chunk := b.signalData[b.chunkOffsets[row]:b.chunkOffsets[row+1]]

	if b.signalCompression == format.SignalVBZ {
		if count == 0 && len(chunk) == 0 {
			return nil
		}

		raw, err := b.signalCodec.Decompress(chunk)
		if err != nil {
			return fmt.Errorf("%w: row %d signal: %w", errs.ErrCorruptPayload, row, err)
		}

		return encoding.DecodeSignal(dst, raw)
	}

	return encoding.DecodeRawSignal(dst, chunk)
}

// PoreType copies the pore-type string for a batch-scoped code into buf and
// returns its length. If buf is too small it returns the required length and
// an error wrapping errs.ErrStringNotLongEnough.
func (b *ReadBatch) PoreType(code int16, buf []byte) (int, error) {
	if b.rows == nil {
		return 0, errs.ErrReaderClosed
	}
	if code < 0 || int(code) >= len(b.rows.pores) {
		return 0, fmt.Errorf("%w: pore type %d of %d", errs.ErrInvalidDictionaryIndex, code, len(b.rows.pores))
	}

	return copyString(buf, b.rows.pores[code])
}

// EndReason resolves a batch-scoped end-reason code to its structured value
// and copies its name into buf, following the same buffer contract as PoreType.
func (b *ReadBatch) EndReason(code int16, buf []byte) (format.EndReason, int, error) {
	if b.rows == nil {
		return format.EndReasonUnknown, 0, errs.ErrReaderClosed
	}
	if code < 0 || int(code) >= len(b.rows.reasons) {
		return format.EndReasonUnknown, 0, fmt.Errorf("%w: end reason %d of %d", errs.ErrInvalidDictionaryIndex, code, len(b.rows.reasons))
	}

	name := b.rows.reasons[code]
	reason, _ := format.ParseEndReason(name)

	n, err := copyString(buf, name)

	return reason, n, err
}

func copyString(buf []byte, s string) (int, error) {
	if len(buf) < len(s) {
		return len(s), fmt.Errorf("%w: need %d bytes, have %d", errs.ErrStringNotLongEnough, len(s), len(buf))
	}

	return copy(buf, s), nil
}

// Release returns the batch block to the pool. The batch must not be used
// afterwards; calling Release again is a no-op.
func (b *ReadBatch) Release() {
	if b == nil || b.block == nil {
		return
	}

	pool.PutPayloadBuffer(b.block)
	*b = ReadBatch{}
}
