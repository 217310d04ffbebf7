package container

import (
	"github.com/google/uuid"

	"github.com/arloliu/readpack/format"
	"github.com/arloliu/readpack/internal/pool"
)

var (
	uuidPool      = pool.NewSlicePool[uuid.UUID]()
	uint8Pool     = pool.NewSlicePool[uint8]()
	uint16Pool    = pool.NewSlicePool[uint16]()
	uint32Pool    = pool.NewSlicePool[uint32]()
	uint64Pool    = pool.NewSlicePool[uint64]()
	int16Pool     = pool.NewSlicePool[int16]()
	float32Pool   = pool.NewSlicePool[float32]()
	boolPool      = pool.NewSlicePool[bool]()
	endReasonPool = pool.NewSlicePool[format.EndReason]()
)

// ColumnBatch is the column-oriented form of a batch of reads, the input of Writer.AddReads.
//
// Every column has one element per read. PoreTypes holds codes of the
// destination writer's pore dictionary (or NoPoreType) and EndReasons holds
// the structured end reason, not a dictionary code.
//
// All columns are leased from typed slice pools by NewColumnBatch and handed
// back by Release, so the allocation set and the release set are the same
// field list below.
type ColumnBatch struct {
	ReadIDs                []uuid.UUID
	ReadNumbers            []uint32
	StartSamples           []uint64
	MedianBefores          []float32
	Channels               []uint16
	Wells                  []uint8
	PoreTypes              []int16
	CalibrationOffsets     []float32
	CalibrationScales      []float32
	EndReasons             []format.EndReason
	EndReasonForced        []bool
	RunInfos               []int16
	NumMinknowEvents       []uint64
	TrackedScalingScales   []float32
	TrackedScalingShifts   []float32
	PredictedScalingScales []float32
	PredictedScalingShifts []float32
	NumReadsSinceMuxChange []uint32
	TimeSinceMuxChange     []float32
	NumSamples             []uint64

	rows     int
	releases []func()
}

// NewColumnBatch allocates every column with exactly rows zeroed elements.
func NewColumnBatch(rows int) *ColumnBatch {
	b := &ColumnBatch{
		rows:     rows,
		releases: make([]func(), 0, 20),
	}

	b.ReadIDs = lease(b, uuidPool, rows)
	b.ReadNumbers = lease(b, uint32Pool, rows)
	b.StartSamples = lease(b, uint64Pool, rows)
	b.MedianBefores = lease(b, float32Pool, rows)
	b.Channels = lease(b, uint16Pool, rows)
	b.Wells = lease(b, uint8Pool, rows)
	b.PoreTypes = lease(b, int16Pool, rows)
	b.CalibrationOffsets = lease(b, float32Pool, rows)
	b.CalibrationScales = lease(b, float32Pool, rows)
	b.EndReasons = lease(b, endReasonPool, rows)
	b.EndReasonForced = lease(b, boolPool, rows)
	b.RunInfos = lease(b, int16Pool, rows)
	b.NumMinknowEvents = lease(b, uint64Pool, rows)
	b.TrackedScalingScales = lease(b, float32Pool, rows)
	b.TrackedScalingShifts = lease(b, float32Pool, rows)
	b.PredictedScalingScales = lease(b, float32Pool, rows)
	b.PredictedScalingShifts = lease(b, float32Pool, rows)
	b.NumReadsSinceMuxChange = lease(b, uint32Pool, rows)
	b.TimeSinceMuxChange = lease(b, float32Pool, rows)
	b.NumSamples = lease(b, uint64Pool, rows)

	return b
}

func lease[T any](b *ColumnBatch, p *pool.SlicePool[T], rows int) []T {
	s, release := p.Get(rows)
	b.releases = append(b.releases, release)

	return s
}

// Len returns the number of reads in the batch, 0 after Release.
func (b *ColumnBatch) Len() int {
	if b == nil {
		return 0
	}

	return b.rows
}

// SetRow copies the fixed-width fields of rec into row i. PoreTypes,
// EndReasons and NumSamples are left to the caller.
func (b *ColumnBatch) SetRow(i int, rec *RowRecord) {
	b.ReadIDs[i] = rec.ReadID
	b.ReadNumbers[i] = rec.ReadNumber
	b.StartSamples[i] = rec.StartSample
	b.MedianBefores[i] = rec.MedianBefore
	b.Channels[i] = rec.Channel
	b.Wells[i] = rec.Well
	b.CalibrationOffsets[i] = rec.CalibrationOffset
	b.CalibrationScales[i] = rec.CalibrationScale
	b.EndReasonForced[i] = rec.EndReasonForced
	b.RunInfos[i] = rec.RunInfo
	b.NumMinknowEvents[i] = rec.NumMinknowEvents
	b.TrackedScalingScales[i] = rec.TrackedScalingScale
	b.TrackedScalingShifts[i] = rec.TrackedScalingShift
	b.PredictedScalingScales[i] = rec.PredictedScalingScale
	b.PredictedScalingShifts[i] = rec.PredictedScalingShift
	b.NumReadsSinceMuxChange[i] = rec.NumReadsSinceMuxChange
	b.TimeSinceMuxChange[i] = rec.TimeSinceMuxChange
}

// Release hands every column back to its pool and clears the fields.
// It is safe to call more than once and on a nil batch.
func (b *ColumnBatch) Release() {
	if b == nil {
		return
	}

	for _, release := range b.releases {
		release()
	}

	*b = ColumnBatch{}
}
