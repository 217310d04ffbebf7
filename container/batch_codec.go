package container

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/arloliu/readpack/encoding"
	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
)

// rowsLayout is the uncompressed row payload of one batch.
//
//	row count         uint32
//	pore types        string table, batch-local
//	end reasons       string table, batch-local
//	columns           one contiguous run per field, RowRecord order
//	num samples       uint64 per row
//	signal chunks     uint32 stored size per row
type rowsLayout struct {
	pores       []string
	poreCodes   []int16
	reasons     []string
	reasonCodes []int16
	chunkSizes  []uint32
}

func encodeRows(b *ColumnBatch, l *rowsLayout, engine endian.EndianEngine) ([]byte, error) {
	w := encoding.NewColumnWriter(engine)
	defer w.Finish()

	n := b.Len()
	w.Uint32(uint32(n)) //nolint: gosec

	dicts, err := encoding.EncodeStrings(nil, l.pores, engine)
	if err != nil {
		return nil, fmt.Errorf("pore dictionary: %w", err)
	}
	dicts, err = encoding.EncodeStrings(dicts, l.reasons, engine)
	if err != nil {
		return nil, fmt.Errorf("end reason dictionary: %w", err)
	}
	w.Raw(dicts)

	for _, id := range b.ReadIDs {
		w.Raw(id[:])
	}
	for _, v := range b.ReadNumbers {
		w.Uint32(v)
	}
	for _, v := range b.StartSamples {
		w.Uint64(v)
	}
	for _, v := range b.MedianBefores {
		w.Float32(v)
	}
	for _, v := range b.Channels {
		w.Uint16(v)
	}
	for _, v := range b.Wells {
		w.Uint8(v)
	}
	for _, v := range l.poreCodes {
		w.Int16(v)
	}
	for _, v := range b.CalibrationOffsets {
		w.Float32(v)
	}
	for _, v := range b.CalibrationScales {
		w.Float32(v)
	}
	for _, v := range l.reasonCodes {
		w.Int16(v)
	}
	for _, v := range b.EndReasonForced {
		w.Bool(v)
	}
	for _, v := range b.RunInfos {
		w.Int16(v)
	}
	for _, v := range b.NumMinknowEvents {
		w.Uint64(v)
	}
	for _, col := range [][]float32{b.TrackedScalingScales, b.TrackedScalingShifts, b.PredictedScalingScales, b.PredictedScalingShifts} {
		for _, v := range col {
			w.Float32(v)
		}
	}
	for _, v := range b.NumReadsSinceMuxChange {
		w.Uint32(v)
	}
	for _, v := range b.TimeSinceMuxChange {
		w.Float32(v)
	}
	for _, v := range b.NumSamples {
		w.Uint64(v)
	}
	for _, v := range l.chunkSizes {
		w.Uint32(v)
	}

	return append([]byte(nil), w.Bytes()...), nil
}

// decodedRows is the parsed row payload held by a ReadBatch.
type decodedRows struct {
	records    []RowRecord
	numSamples []uint64
	chunkSizes []uint32
	pores      []string
	reasons    []string
}

func decodeRows(data []byte, engine endian.EndianEngine) (*decodedRows, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: row payload is %d bytes", errs.ErrCorruptPayload, len(data))
	}

	n := int(engine.Uint32(data))
	offset := 4

	d := &decodedRows{}

	var (
		size int
		err  error
	)

	d.pores, size, err = encoding.DecodeStrings(data[offset:], engine)
	if err != nil {
		return nil, fmt.Errorf("pore dictionary: %w", err)
	}
	offset += size

	d.reasons, size, err = encoding.DecodeStrings(data[offset:], engine)
	if err != nil {
		return nil, fmt.Errorf("end reason dictionary: %w", err)
	}
	offset += size

	// each row occupies a fixed number of column bytes, so the count can be checked up front
	const rowBytes = 16 + 4 + 8 + 4 + 2 + 1 + 2 + 4 + 4 + 2 + 1 + 2 + 8 + 16 + 4 + 4 + 8 + 4
	if len(data)-offset != n*rowBytes {
		return nil, fmt.Errorf("%w: %d rows need %d column bytes, have %d",
			errs.ErrRowCountMismatch, n, n*rowBytes, len(data)-offset)
	}

	r := encoding.NewColumnReader(data[offset:], engine)
	recs := make([]RowRecord, n)

	for i := range recs {
		id, _ := uuid.FromBytes(r.Raw(16))
		recs[i].ReadID = id
	}
	for i := range recs {
		recs[i].ReadNumber = r.Uint32()
	}
	for i := range recs {
		recs[i].StartSample = r.Uint64()
	}
	for i := range recs {
		recs[i].MedianBefore = r.Float32()
	}
	for i := range recs {
		recs[i].Channel = r.Uint16()
	}
	for i := range recs {
		recs[i].Well = r.Uint8()
	}
	for i := range recs {
		recs[i].PoreType = r.Int16()
	}
	for i := range recs {
		recs[i].CalibrationOffset = r.Float32()
	}
	for i := range recs {
		recs[i].CalibrationScale = r.Float32()
	}
	for i := range recs {
		recs[i].EndReason = r.Int16()
	}
	for i := range recs {
		recs[i].EndReasonForced = r.Bool()
	}
	for i := range recs {
		recs[i].RunInfo = r.Int16()
	}
	for i := range recs {
		recs[i].NumMinknowEvents = r.Uint64()
	}
	for i := range recs {
		recs[i].TrackedScalingScale = r.Float32()
	}
	for i := range recs {
		recs[i].TrackedScalingShift = r.Float32()
	}
	for i := range recs {
		recs[i].PredictedScalingScale = r.Float32()
	}
	for i := range recs {
		recs[i].PredictedScalingShift = r.Float32()
	}
	for i := range recs {
		recs[i].NumReadsSinceMuxChange = r.Uint32()
	}
	for i := range recs {
		recs[i].TimeSinceMuxChange = r.Float32()
	}

	d.numSamples = make([]uint64, n)
	for i := range d.numSamples {
		d.numSamples[i] = r.Uint64()
	}

	d.chunkSizes = make([]uint32, n)
	for i := range d.chunkSizes {
		d.chunkSizes[i] = r.Uint32()
	}

	if err := r.Err(); err != nil {
		return nil, err
	}

	d.records = recs

	return d, nil
}
