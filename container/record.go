package container

import (
	"github.com/google/uuid"
)

// NoPoreType is the pore-type code of a read whose pore type could not be resolved.
const NoPoreType int16 = -1

// RowRecord is the fixed-layout metadata of one read as stored in a batch.
//
// PoreType and EndReason are codes into the dictionaries of the batch the
// record was read from. They mean nothing outside that batch; resolve them
// through ReadBatch.PoreType and ReadBatch.EndReason.
type RowRecord struct {
	ReadID       uuid.UUID
	ReadNumber   uint32
	StartSample  uint64
	MedianBefore float32

	Channel uint16
	Well    uint8

	// PoreType is a batch-scoped pore-type dictionary code.
	PoreType int16

	CalibrationOffset float32
	CalibrationScale  float32

	// EndReason is a batch-scoped end-reason dictionary code.
	EndReason       int16
	EndReasonForced bool

	// RunInfo is a file-scoped run-info index.
	RunInfo int16

	NumMinknowEvents uint64

	TrackedScalingScale   float32
	TrackedScalingShift   float32
	PredictedScalingScale float32
	PredictedScalingShift float32

	NumReadsSinceMuxChange uint32
	TimeSinceMuxChange     float32
}

// RunInfo describes one acquisition run. Reads refer to it by index.
type RunInfo struct {
	AcquisitionID         string
	AcquisitionStartTime  int64 // unix milliseconds
	AdcMax                int16
	AdcMin                int16
	ContextTags           map[string]string
	ExperimentName        string
	FlowCellID            string
	FlowCellProductCode   string
	ProtocolName          string
	ProtocolRunID         string
	ProtocolStartTime     int64 // unix milliseconds
	SampleID              string
	SampleRate            uint16
	SequencingKit         string
	SequencerPosition     string
	SequencerPositionType string
	Software              string
	SystemName            string
	SystemType            string
	TrackingID            map[string]string
}
