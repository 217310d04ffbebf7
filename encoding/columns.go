package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/internal/pool"
)

// ColumnWriter appends fixed-width values to a pooled buffer.
//
// A batch payload is built by writing each column in full before the next one,
// so every column occupies one contiguous run of bytes.
//
// Note: ColumnWriter is NOT thread-safe. Call Finish to return the buffer to the pool.
type ColumnWriter struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
}

// NewColumnWriter creates a writer backed by a pooled payload buffer.
func NewColumnWriter(engine endian.EndianEngine) *ColumnWriter {
	return &ColumnWriter{
		buf:    pool.GetPayloadBuffer(),
		engine: engine,
	}
}

// Bytes returns the encoded payload. It is valid until Finish.
func (w *ColumnWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the payload size in bytes.
func (w *ColumnWriter) Len() int {
	return w.buf.Len()
}

// Finish returns the buffer to the pool. The writer must not be used afterwards.
func (w *ColumnWriter) Finish() {
	pool.PutPayloadBuffer(w.buf)
	w.buf = nil
}

func (w *ColumnWriter) Uint8(v uint8) {
	w.buf.B = append(w.buf.B, v)
}

func (w *ColumnWriter) Bool(v bool) {
	if v {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

func (w *ColumnWriter) Uint16(v uint16) {
	w.buf.B = w.engine.AppendUint16(w.buf.B, v)
}

func (w *ColumnWriter) Int16(v int16) {
	w.Uint16(uint16(v)) //nolint: gosec
}

func (w *ColumnWriter) Uint32(v uint32) {
	w.buf.B = w.engine.AppendUint32(w.buf.B, v)
}

func (w *ColumnWriter) Uint64(v uint64) {
	w.buf.B = w.engine.AppendUint64(w.buf.B, v)
}

func (w *ColumnWriter) Int64(v int64) {
	w.Uint64(uint64(v)) //nolint: gosec
}

func (w *ColumnWriter) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

// Raw appends b verbatim.
func (w *ColumnWriter) Raw(b []byte) {
	w.buf.MustWrite(b)
}

// String appends a uint16 length-prefixed string.
func (w *ColumnWriter) String(s string) error {
	if len(s) > MaxStringLength {
		return fmt.Errorf("%w: %d bytes, maximum %d", errs.ErrStringTooLong, len(s), MaxStringLength)
	}
	w.Uint16(uint16(len(s))) //nolint: gosec
	w.buf.MustWrite([]byte(s))

	return nil
}

// ColumnReader reads fixed-width values written by ColumnWriter.
//
// The first short read latches an error; subsequent reads return zero values
// and Err reports what went wrong. Callers check Err once after a run of reads.
type ColumnReader struct {
	data   []byte
	offset int
	engine endian.EndianEngine
	err    error
}

// NewColumnReader creates a reader over data.
func NewColumnReader(data []byte, engine endian.EndianEngine) *ColumnReader {
	return &ColumnReader{data: data, engine: engine}
}

// Err returns the first error encountered, if any.
func (r *ColumnReader) Err() error {
	return r.err
}

// Offset returns the number of bytes consumed.
func (r *ColumnReader) Offset() int {
	return r.offset
}

// Remaining returns the number of unread bytes.
func (r *ColumnReader) Remaining() int {
	return len(r.data) - r.offset
}

func (r *ColumnReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data)-r.offset < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", errs.ErrCorruptPayload, n, r.offset, len(r.data)-r.offset)
		return nil
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n

	return b
}

func (r *ColumnReader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *ColumnReader) Bool() bool {
	return r.Uint8() != 0
}

func (r *ColumnReader) Uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}

	return r.engine.Uint16(b)
}

func (r *ColumnReader) Int16() int16 {
	return int16(r.Uint16()) //nolint: gosec
}

func (r *ColumnReader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return r.engine.Uint32(b)
}

func (r *ColumnReader) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}

	return r.engine.Uint64(b)
}

func (r *ColumnReader) Int64() int64 {
	return int64(r.Uint64()) //nolint: gosec
}

func (r *ColumnReader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

// Raw returns the next n bytes without copying.
func (r *ColumnReader) Raw(n int) []byte {
	return r.take(n)
}

// String reads a uint16 length-prefixed string.
func (r *ColumnReader) String() string {
	n := int(r.Uint16())
	b := r.take(n)
	if b == nil {
		return ""
	}

	return string(b)
}
