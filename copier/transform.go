package copier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/readpack/container"
	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/format"
)

// BatchContext resolves the batch-scoped dictionary codes of one source batch.
type BatchContext struct {
	// Index is the source batch index, used in errors and logs.
	Index int
	// PoreType copies the pore-type string of code into buf (see LookupFunc).
	PoreType func(code int16, buf []byte) (int, error)
	// EndReason resolves code to its structured value and copies its name into buf.
	EndReason func(code int16, buf []byte) (format.EndReason, int, error)
}

// batchContextOf builds the BatchContext of a source batch.
func batchContextOf(index int, b SourceBatch) BatchContext {
	return BatchContext{
		Index:     index,
		PoreType:  b.PoreType,
		EndReason: b.EndReason,
	}
}

// Transformer turns source row records into destination column batches,
// rewriting batch-scoped pore-type codes into destination codes.
//
// A Transformer is not safe for concurrent use.
type Transformer struct {
	interner *Interner
	rep      *reporter
}

// NewTransformer creates a Transformer interning pore types through in.
func NewTransformer(in *Interner, opts ...Option) (*Transformer, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}

	return newTransformer(in, &reporter{settings: s}), nil
}

func newTransformer(in *Interner, rep *reporter) *Transformer {
	return &Transformer{interner: in, rep: rep}
}

// Errors returns the number of errors the Transformer has reported.
func (t *Transformer) Errors() int {
	return t.rep.count
}

// Transform builds a column batch from rows. numSamples holds the signal
// length of each row.
//
// A pore type that cannot be resolved or registered becomes
// container.NoPoreType and an end reason that cannot be resolved becomes
// format.EndReasonUnknown; the failure is logged. Under PolicyAbort the first
// such failure releases the partial batch and is returned.
//
// The caller owns the returned batch and must Release it.
func (t *Transformer) Transform(rows []container.RowRecord, numSamples []uint64, batch BatchContext) (*container.ColumnBatch, error) {
	if len(numSamples) != len(rows) {
		return nil, fmt.Errorf("%w: %d rows but %d sample counts", errs.ErrRowCountMismatch, len(rows), len(numSamples))
	}

	out := container.NewColumnBatch(len(rows))

	for i := range rows {
		rec := &rows[i]

		out.SetRow(i, rec)
		out.NumSamples[i] = numSamples[i]

		code, err := t.poreType(batch, i, rec.PoreType)
		if err != nil {
			out.Release()
			return nil, err
		}
		out.PoreTypes[i] = code

		reason, err := t.endReason(batch, i, rec.EndReason)
		if err != nil {
			out.Release()
			return nil, err
		}
		out.EndReasons[i] = reason
	}

	t.rep.metrics.SetPoreTypes(t.interner.Len())

	return out, nil
}

func (t *Transformer) poreType(batch BatchContext, row int, code int16) (int16, error) {
	if code == container.NoPoreType {
		return container.NoPoreType, nil
	}

	name, err := Resolve(func(buf []byte) (int, error) {
		return batch.PoreType(code, buf)
	})
	if err != nil {
		return container.NoPoreType, t.rep.report(&StageError{Stage: StageResolve, Batch: batch.Index, Row: row, Err: err})
	}

	dest, err := t.interner.Intern(name)
	if err != nil {
		return container.NoPoreType, t.rep.report(&StageError{Stage: StageIntern, Batch: batch.Index, Row: row, Err: err})
	}

	return dest, nil
}

func (t *Transformer) endReason(batch BatchContext, row int, code int16) (format.EndReason, error) {
	var reason format.EndReason

	name, err := Resolve(func(buf []byte) (int, error) {
		r, n, err := batch.EndReason(code, buf)
		reason = r

		return n, err
	})
	if err != nil {
		return format.EndReasonUnknown, t.rep.report(&StageError{Stage: StageResolve, Batch: batch.Index, Row: row, Err: err})
	}

	if ce := t.rep.logger.Check(zap.DebugLevel, "end reason"); ce != nil {
		ce.Write(zap.Int("batch", batch.Index), zap.Int("row", row), zap.String("end_reason", name))
	}

	return reason, nil
}
