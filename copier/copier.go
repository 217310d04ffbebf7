package copier

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/readpack/container"
	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/format"
	"github.com/arloliu/readpack/internal/pool"
)

var signalPool = pool.NewSlicePool[int16]()

// Source is a readable container.
type Source interface {
	BatchCount() int
	Batch(i int) (SourceBatch, error)
	RunInfoCount() int
	RunInfo(i int) (*container.RunInfo, error)
}

// SourceBatch is one loaded source batch. *container.ReadBatch implements it.
type SourceBatch interface {
	RowCount() int
	RowInfo(row int, version uint16) (container.RowRecord, uint16, error)
	CompleteSampleCount(row int) (uint64, error)
	CompleteSignal(row int, dst []int16) error
	PoreType(code int16, buf []byte) (int, error)
	EndReason(code int16, buf []byte) (format.EndReason, int, error)
	Release()
}

// Destination is a writable container. *container.Writer implements it.
type Destination interface {
	Registrar
	AddReads(batch *container.ColumnBatch, signals [][]int16) error
	AddRunInfo(ri *container.RunInfo) (int16, error)
}

type readerSource struct {
	r *container.Reader
}

// FromReader adapts a container reader to Source.
func FromReader(r *container.Reader) Source {
	return readerSource{r: r}
}

func (s readerSource) BatchCount() int {
	return s.r.BatchCount()
}

func (s readerSource) Batch(i int) (SourceBatch, error) {
	b, err := s.r.Batch(i)
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (s readerSource) RunInfoCount() int {
	return s.r.RunInfoCount()
}

func (s readerSource) RunInfo(i int) (*container.RunInfo, error) {
	return s.r.RunInfo(i)
}

// Stats summarizes a run.
type Stats struct {
	// Batches counts batches appended to the destination. A batch with no
	// loadable rows is skipped and not counted.
	Batches   int
	Rows      int
	Samples   uint64
	RunInfos  int
	PoreTypes int
	// RunInfoPlaceholders counts run infos that failed to copy and were
	// replaced by an empty entry.
	RunInfoPlaceholders int
	// Errors is the number of errors logged, including one that ended the run.
	Errors int
}

// Copier copies every batch and run info of a Source into a Destination,
// merging the per-batch pore-type dictionaries into one destination dictionary.
//
// A Copier runs once and is not safe for concurrent use.
type Copier struct {
	src         Source
	dst         Destination
	rep         *reporter
	interner    *Interner
	transformer *Transformer
	stats       Stats
}

// New creates a Copier from src to dst.
func New(src Source, dst Destination, opts ...Option) (*Copier, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}

	rep := &reporter{settings: s}
	in := NewInterner(dst)

	return &Copier{
		src:         src,
		dst:         dst,
		rep:         rep,
		interner:    in,
		transformer: newTransformer(in, rep),
	}, nil
}

// Interner returns the pore-type interner of the run.
func (c *Copier) Interner() *Interner {
	return c.interner
}

// Run copies all batches in order, then all run infos.
//
// Per-batch and per-row errors are logged and skipped under PolicyContinue;
// a row whose metadata or signal cannot be loaded is left out of the
// destination. Under PolicyAbort the first error stops the run and is
// returned as a *StageError. The returned Stats are valid in both cases.
func (c *Copier) Run() (Stats, error) {
	batchCount := c.src.BatchCount()
	c.rep.logger.Info("copy started",
		zap.Int("batches", batchCount),
		zap.Int("run_infos", c.src.RunInfoCount()),
		zap.Stringer("error_policy", c.rep.policy))

	for i := range batchCount {
		if err := c.copyBatch(i); err != nil {
			return c.finish(), err
		}
	}

	if err := c.copyRunInfos(); err != nil {
		return c.finish(), err
	}

	stats := c.finish()
	c.rep.logger.Info("copy finished",
		zap.Int("batches", stats.Batches),
		zap.Int("rows", stats.Rows),
		zap.Uint64("samples", stats.Samples),
		zap.Int("run_infos", stats.RunInfos),
		zap.Int("run_info_placeholders", stats.RunInfoPlaceholders),
		zap.Int("pore_types", stats.PoreTypes),
		zap.Int("errors", stats.Errors))

	return stats, nil
}

func (c *Copier) finish() Stats {
	c.stats.PoreTypes = c.interner.Len()
	c.stats.Errors = c.rep.count

	return c.stats
}

// loadedRows holds the rows of one source batch that loaded completely.
type loadedRows struct {
	records    []container.RowRecord
	numSamples []uint64
	signals    [][]int16
	releases   []func()
	samples    uint64
}

func (l *loadedRows) release() {
	for _, release := range l.releases {
		release()
	}
	l.releases = nil
	l.signals = nil
}

func (c *Copier) copyBatch(index int) error {
	batch, err := c.src.Batch(index)
	if err != nil {
		return c.rep.report(&StageError{Stage: StageBatch, Batch: index, Row: -1, Err: err})
	}
	defer batch.Release()

	rows, err := c.loadRows(index, batch)
	defer rows.release()
	if err != nil {
		return err
	}
	if len(rows.records) == 0 {
		if ce := c.rep.logger.Check(zap.DebugLevel, "batch skipped"); ce != nil {
			ce.Write(zap.Int("batch", index), zap.Int("source_rows", batch.RowCount()))
		}

		return nil
	}

	out, err := c.transformer.Transform(rows.records, rows.numSamples, batchContextOf(index, batch))
	if err != nil {
		return err
	}
	defer out.Release()

	if err := c.dst.AddReads(out, rows.signals); err != nil {
		return c.rep.report(&StageError{Stage: StageAppend, Batch: index, Row: -1, Err: err})
	}

	c.stats.Batches++
	c.stats.Rows += out.Len()
	c.stats.Samples += rows.samples
	c.rep.metrics.BatchAppended(out.Len(), rows.samples)

	if ce := c.rep.logger.Check(zap.DebugLevel, "batch copied"); ce != nil {
		ce.Write(zap.Int("batch", index), zap.Int("rows", out.Len()), zap.Uint64("samples", rows.samples))
	}

	return nil
}

// loadRows loads row records and signals. The returned rows must be released
// even when an error is returned.
func (c *Copier) loadRows(index int, batch SourceBatch) (*loadedRows, error) {
	n := batch.RowCount()
	rows := &loadedRows{
		records:    make([]container.RowRecord, 0, n),
		numSamples: make([]uint64, 0, n),
		signals:    make([][]int16, 0, n),
		releases:   make([]func(), 0, n),
	}

	for row := range n {
		rec, _, err := batch.RowInfo(row, format.RowInfoVersion)
		if err != nil {
			if err := c.rep.report(&StageError{Stage: StageRowInfo, Batch: index, Row: row, Err: err}); err != nil {
				return rows, err
			}

			continue
		}

		signal, release, err := c.loadSignal(batch, row)
		if err != nil {
			if err := c.rep.report(&StageError{Stage: StageSignal, Batch: index, Row: row, Err: err}); err != nil {
				return rows, err
			}

			continue
		}

		rows.records = append(rows.records, rec)
		rows.numSamples = append(rows.numSamples, uint64(len(signal)))
		rows.signals = append(rows.signals, signal)
		rows.releases = append(rows.releases, release)
		rows.samples += uint64(len(signal))
	}

	return rows, nil
}

func (c *Copier) loadSignal(batch SourceBatch, row int) ([]int16, func(), error) {
	count, err := batch.CompleteSampleCount(row)
	if err != nil {
		return nil, nil, err
	}
	if count > uint64(maxSignalSamples) {
		return nil, nil, fmt.Errorf("%w: row has %d samples", errs.ErrCorruptPayload, count)
	}

	signal, release := signalPool.Get(int(count))
	if err := batch.CompleteSignal(row, signal); err != nil {
		release()
		return nil, nil, err
	}

	return signal, release, nil
}

// maxSignalSamples bounds a single read's signal buffer.
const maxSignalSamples = 1 << 31

// copyRunInfos copies run infos so that destination index i holds source
// entry i. Rows keep their source run-info index, so under PolicyContinue a
// failed entry is replaced by an empty placeholder instead of being dropped.
func (c *Copier) copyRunInfos() error {
	for i := range c.src.RunInfoCount() {
		err := c.copyRunInfo(i)
		if err == nil {
			c.stats.RunInfos++
			c.rep.metrics.RunInfoCopied()

			continue
		}

		var stageErr *StageError
		if errors.As(err, &stageErr) {
			return err
		}
		if err := c.rep.report(&StageError{Stage: StageRunInfo, Batch: i, Row: -1, Err: err}); err != nil {
			return err
		}

		index, err := c.dst.AddRunInfo(&container.RunInfo{})
		if err != nil {
			return c.rep.fatal(&StageError{Stage: StageRunInfo, Batch: i, Row: -1, Err: fmt.Errorf("placeholder: %w", err)})
		}
		if err := c.checkRunInfoIndex(i, index); err != nil {
			return err
		}
		c.stats.RunInfoPlaceholders++
	}

	return nil
}

// copyRunInfo returns a *StageError only for failures that leave the
// destination run-info list misaligned.
func (c *Copier) copyRunInfo(i int) error {
	ri, err := c.src.RunInfo(i)
	if err != nil {
		return err
	}
	if ri == nil {
		return fmt.Errorf("%w: nil run info", errs.ErrInvalidRunInfo)
	}

	index, err := c.dst.AddRunInfo(ri)
	if err != nil {
		return err
	}

	return c.checkRunInfoIndex(i, index)
}

func (c *Copier) checkRunInfoIndex(want int, got int16) error {
	if int(got) == want {
		return nil
	}

	return c.rep.fatal(&StageError{
		Stage: StageRunInfo,
		Batch: want,
		Row:   -1,
		Err:   fmt.Errorf("%w: registered at destination index %d", errs.ErrInvalidRunInfo, got),
	})
}
