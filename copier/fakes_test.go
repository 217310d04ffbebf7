package copier

import (
	"errors"
	"fmt"
	"slices"

	"github.com/arloliu/readpack/container"
	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/format"
)

var errInjected = errors.New("injected failure")

type fakeBatch struct {
	pores    []string
	reasons  []string
	rows     []container.RowRecord
	signals  [][]int16
	released int

	failRowInfo map[int]bool
	failSignal  map[int]bool
}

func (b *fakeBatch) RowCount() int { return len(b.rows) }

func (b *fakeBatch) RowInfo(row int, version uint16) (container.RowRecord, uint16, error) {
	if b.failRowInfo[row] {
		return container.RowRecord{}, 0, errInjected
	}

	return b.rows[row], format.RowInfoVersion, nil
}

func (b *fakeBatch) CompleteSampleCount(row int) (uint64, error) {
	return uint64(len(b.signals[row])), nil
}

func (b *fakeBatch) CompleteSignal(row int, dst []int16) error {
	if b.failSignal[row] {
		return errInjected
	}
	copy(dst, b.signals[row])

	return nil
}

func lookupString(dict []string, code int16, buf []byte) (int, error) {
	if code < 0 || int(code) >= len(dict) {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidDictionaryIndex, code)
	}

	s := dict[code]
	if len(buf) < len(s) {
		return len(s), errs.ErrStringNotLongEnough
	}

	return copy(buf, s), nil
}

func (b *fakeBatch) PoreType(code int16, buf []byte) (int, error) {
	return lookupString(b.pores, code, buf)
}

func (b *fakeBatch) EndReason(code int16, buf []byte) (format.EndReason, int, error) {
	n, err := lookupString(b.reasons, code, buf)
	if err != nil {
		return format.EndReasonUnknown, n, err
	}
	reason, _ := format.ParseEndReason(b.reasons[code])

	return reason, n, nil
}

func (b *fakeBatch) Release() { b.released++ }

type fakeSource struct {
	batches   []*fakeBatch
	runInfos  []*container.RunInfo
	failBatch map[int]bool

	failRunInfo map[int]bool
}

func (s *fakeSource) BatchCount() int { return len(s.batches) }

func (s *fakeSource) Batch(i int) (SourceBatch, error) {
	if s.failBatch[i] {
		return nil, errInjected
	}

	return s.batches[i], nil
}

func (s *fakeSource) RunInfoCount() int { return len(s.runInfos) }

func (s *fakeSource) RunInfo(i int) (*container.RunInfo, error) {
	if s.failRunInfo[i] {
		return nil, errInjected
	}

	return s.runInfos[i], nil
}

// appended is a copy of one AddReads call; the batch itself is released by the copier.
type appended struct {
	readNumbers []uint32
	poreTypes   []int16
	endReasons  []format.EndReason
	numSamples  []uint64
	signals     [][]int16
}

type fakeDest struct {
	pores     []string
	addCalls  map[string]int
	failPores map[string]int // remaining failures per string
	batches   []appended
	runInfos  []*container.RunInfo
	failAdd   bool

	// failRunInfos rejects run infos by acquisition id; "" matches placeholders.
	failRunInfos map[string]bool
}

func newFakeDest() *fakeDest {
	return &fakeDest{addCalls: map[string]int{}, failPores: map[string]int{}}
}

func (d *fakeDest) AddPore(poreType string) (int16, error) {
	d.addCalls[poreType]++
	if d.failPores[poreType] > 0 {
		d.failPores[poreType]--
		return 0, errs.ErrDictionaryFull
	}
	d.pores = append(d.pores, poreType)

	return int16(len(d.pores) - 1), nil
}

func (d *fakeDest) AddReads(batch *container.ColumnBatch, signals [][]int16) error {
	if d.failAdd {
		return errInjected
	}

	a := appended{
		readNumbers: slices.Clone(batch.ReadNumbers),
		poreTypes:   slices.Clone(batch.PoreTypes),
		endReasons:  slices.Clone(batch.EndReasons),
		numSamples:  slices.Clone(batch.NumSamples),
	}
	for _, s := range signals {
		a.signals = append(a.signals, slices.Clone(s))
	}
	d.batches = append(d.batches, a)

	return nil
}

func (d *fakeDest) AddRunInfo(ri *container.RunInfo) (int16, error) {
	if d.failRunInfos[ri.AcquisitionID] {
		return -1, errInjected
	}
	d.runInfos = append(d.runInfos, ri)
	return int16(len(d.runInfos) - 1), nil
}

// newFakeBatch builds a batch whose rows use the given local pore codes.
// Every row gets end reason code 0 ("signal_positive") and a short signal.
func newFakeBatch(pores []string, codes []int16) *fakeBatch {
	b := &fakeBatch{
		pores:   pores,
		reasons: []string{"signal_positive", "mux_change"},
	}
	for i, code := range codes {
		b.rows = append(b.rows, container.RowRecord{
			ReadNumber: uint32(len(b.rows) + 1),
			Channel:    uint16(i + 1),
			PoreType:   code,
			EndReason:  0,
		})
		b.signals = append(b.signals, []int16{int16(i), int16(i + 1), int16(-i)})
	}

	return b
}
