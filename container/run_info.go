package container

import (
	"fmt"

	"github.com/arloliu/readpack/encoding"
	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
)

func (ri *RunInfo) stringFields() []*string {
	return []*string{
		&ri.AcquisitionID,
		&ri.ExperimentName,
		&ri.FlowCellID,
		&ri.FlowCellProductCode,
		&ri.ProtocolName,
		&ri.ProtocolRunID,
		&ri.SampleID,
		&ri.SequencingKit,
		&ri.SequencerPosition,
		&ri.SequencerPositionType,
		&ri.Software,
		&ri.SystemName,
		&ri.SystemType,
	}
}

// encodeRunInfo serializes ri: fixed-width fields, the string fields in a fixed
// order, then the context tags and tracking id maps.
func encodeRunInfo(ri *RunInfo, engine endian.EndianEngine) ([]byte, error) {
	w := encoding.NewColumnWriter(engine)
	defer w.Finish()

	w.Int64(ri.AcquisitionStartTime)
	w.Int64(ri.ProtocolStartTime)
	w.Int16(ri.AdcMax)
	w.Int16(ri.AdcMin)
	w.Uint16(ri.SampleRate)

	for _, s := range ri.stringFields() {
		if err := w.String(*s); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrInvalidRunInfo, err)
		}
	}

	out := append([]byte(nil), w.Bytes()...)

	out, err := encoding.EncodeTags(out, ri.ContextTags, engine)
	if err != nil {
		return nil, fmt.Errorf("%w: context tags: %w", errs.ErrInvalidRunInfo, err)
	}

	out, err = encoding.EncodeTags(out, ri.TrackingID, engine)
	if err != nil {
		return nil, fmt.Errorf("%w: tracking id: %w", errs.ErrInvalidRunInfo, err)
	}

	return out, nil
}

func decodeRunInfo(data []byte, engine endian.EndianEngine) (*RunInfo, error) {
	ri := &RunInfo{}
	r := encoding.NewColumnReader(data, engine)

	ri.AcquisitionStartTime = r.Int64()
	ri.ProtocolStartTime = r.Int64()
	ri.AdcMax = r.Int16()
	ri.AdcMin = r.Int16()
	ri.SampleRate = r.Uint16()

	for _, s := range ri.stringFields() {
		*s = r.String()
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("run info: %w", err)
	}

	offset := r.Offset()

	var (
		n   int
		err error
	)

	ri.ContextTags, n, err = encoding.DecodeTags(data[offset:], engine)
	if err != nil {
		return nil, fmt.Errorf("run info context tags: %w", err)
	}
	offset += n

	ri.TrackingID, n, err = encoding.DecodeTags(data[offset:], engine)
	if err != nil {
		return nil, fmt.Errorf("run info tracking id: %w", err)
	}
	offset += n

	if offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing run info bytes", errs.ErrCorruptPayload, len(data)-offset)
	}

	return ri, nil
}
