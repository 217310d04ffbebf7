package container

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/arloliu/readpack/compress"
	"github.com/arloliu/readpack/encoding"
	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/format"
	"github.com/arloliu/readpack/internal/hash"
	"github.com/arloliu/readpack/internal/options"
	"github.com/arloliu/readpack/section"
)

// Writer creates a readpack file.
//
// Batches are appended to the file as they arrive; dictionaries, run infos and
// the batch index are kept in memory and written as the footer by Close.
//
// Note: Writer is NOT thread-safe.
type Writer struct {
	f      *os.File
	path   string
	header *section.FileHeader
	engine endian.EndianEngine

	rowCodec    compress.Codec
	signalCodec compress.Codec

	creator   string
	poreTypes []string
	runInfos  [][]byte
	batches   []section.BatchIndexEntry
	readCount uint64

	offset uint64
	closed bool
}

// Create creates a new container at path. The file must not exist yet.
func Create(path string, opts ...WriterOption) (*Writer, error) {
	header := section.NewFileHeader(time.Now(), format.RowInfoVersion)

	w := &Writer{
		path:        path,
		header:      header,
		engine:      header.GetEndianEngine(),
		creator:     DefaultCreator,
		signalCodec: compress.NewZstdCompressor(),
	}

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(w.header.Flag.GetRowCompression(), "row")
	if err != nil {
		return nil, err
	}
	w.rowCodec = codec

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w.f = f

	// placeholder, rewritten by Close once the footer location is known
	if _, err := f.Write(w.header.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return nil, fmt.Errorf("write header: %w", err)
	}
	w.offset = section.FirstBatchOffset

	return w, nil
}

// Header returns the header the file will be closed with.
func (w *Writer) Header() section.FileHeader {
	return *w.header
}

// AddPore registers a pore-type string and returns its new code.
// Every call adds an entry; deduplication is up to the caller.
func (w *Writer) AddPore(poreType string) (int16, error) {
	if w.closed {
		return NoPoreType, errs.ErrWriterClosed
	}
	if len(w.poreTypes) >= math.MaxInt16 {
		return NoPoreType, fmt.Errorf("%w: %d pore types", errs.ErrDictionaryFull, len(w.poreTypes))
	}
	if len(poreType) > encoding.MaxStringLength {
		return NoPoreType, fmt.Errorf("%w: pore type of %d bytes", errs.ErrStringTooLong, len(poreType))
	}

	w.poreTypes = append(w.poreTypes, poreType)

	return int16(len(w.poreTypes) - 1), nil //nolint: gosec
}

// PoreTypes returns the pore-type dictionary in code order.
func (w *Writer) PoreTypes() []string {
	return append([]string(nil), w.poreTypes...)
}

// AddRunInfo registers a run info and returns its index.
func (w *Writer) AddRunInfo(ri *RunInfo) (int16, error) {
	if w.closed {
		return -1, errs.ErrWriterClosed
	}
	if ri == nil {
		return -1, fmt.Errorf("%w: nil run info", errs.ErrInvalidRunInfo)
	}
	if len(w.runInfos) >= math.MaxInt16 {
		return -1, fmt.Errorf("%w: %d run infos", errs.ErrDictionaryFull, len(w.runInfos))
	}

	data, err := encodeRunInfo(ri, w.engine)
	if err != nil {
		return -1, err
	}

	w.runInfos = append(w.runInfos, data)

	return int16(len(w.runInfos) - 1), nil //nolint: gosec
}

// RunInfoCount returns the number of registered run infos.
func (w *Writer) RunInfoCount() int {
	return len(w.runInfos)
}

// ReadCount returns the number of reads appended so far.
func (w *Writer) ReadCount() uint64 {
	return w.readCount
}

// AddReads appends a batch of reads with one signal per read.
//
// Pore-type codes must come from AddPore or be NoPoreType. Run-info indices
// are not checked here since run infos may be registered after the reads
// that refer to them. An empty batch is accepted and writes nothing. The
// batch is not retained and can be released once AddReads returns.
func (w *Writer) AddReads(batch *ColumnBatch, signals [][]int16) error {
	if w.closed {
		return errs.ErrWriterClosed
	}

	n := batch.Len()
	if len(signals) != n {
		return fmt.Errorf("%w: %d rows but %d signals", errs.ErrRowCountMismatch, n, len(signals))
	}
	if n == 0 {
		return nil
	}

	layout := &rowsLayout{
		poreCodes:   make([]int16, n),
		reasonCodes: make([]int16, n),
		chunkSizes:  make([]uint32, n),
	}

	localPores := make(map[int16]int16)
	localReasons := make(map[format.EndReason]int16)

	for i := range n {
		if uint64(len(signals[i])) != batch.NumSamples[i] {
			return fmt.Errorf("%w: row %d declares %d samples, signal has %d",
				errs.ErrSampleCountMismatch, i, batch.NumSamples[i], len(signals[i]))
		}

		code := batch.PoreTypes[i]
		switch {
		case code == NoPoreType:
			layout.poreCodes[i] = NoPoreType
		case code < 0 || int(code) >= len(w.poreTypes):
			return fmt.Errorf("%w: row %d pore type %d, dictionary has %d entries",
				errs.ErrInvalidDictionaryIndex, i, code, len(w.poreTypes))
		default:
			local, ok := localPores[code]
			if !ok {
				local = int16(len(layout.pores)) //nolint: gosec
				localPores[code] = local
				layout.pores = append(layout.pores, w.poreTypes[code])
			}
			layout.poreCodes[i] = local
		}

		reason := batch.EndReasons[i]
		if !reason.IsValid() {
			return fmt.Errorf("%w: row %d end reason %d", errs.ErrInvalidDictionaryIndex, i, reason)
		}
		local, ok := localReasons[reason]
		if !ok {
			local = int16(len(layout.reasons)) //nolint: gosec
			localReasons[reason] = local
			layout.reasons = append(layout.reasons, reason.String())
		}
		layout.reasonCodes[i] = local
	}

	signalPayload, err := w.encodeSignals(signals, layout.chunkSizes)
	if err != nil {
		return err
	}

	rows, err := encodeRows(batch, layout, w.engine)
	if err != nil {
		return err
	}

	rowsPayload, err := w.rowCodec.Compress(rows)
	if err != nil {
		return fmt.Errorf("compress rows: %w", err)
	}

	if uint64(len(rowsPayload)) > math.MaxUint32 || uint64(len(signalPayload)) > math.MaxUint32 {
		return fmt.Errorf("%w: batch block too large", errs.ErrCorruptPayload)
	}

	entry := section.BatchIndexEntry{
		Offset:     w.offset,
		RowsSize:   uint32(len(rowsPayload)),   //nolint: gosec
		SignalSize: uint32(len(signalPayload)), //nolint: gosec
		RowCount:   uint32(n),                  //nolint: gosec
		Checksum:   hash.Checksum(rowsPayload, signalPayload),
	}

	if err := w.write(rowsPayload); err != nil {
		return err
	}
	if err := w.write(signalPayload); err != nil {
		return err
	}

	w.batches = append(w.batches, entry)
	w.readCount += uint64(n)

	return nil
}

func (w *Writer) encodeSignals(signals [][]int16, chunkSizes []uint32) ([]byte, error) {
	var payload []byte

	for i, samples := range signals {
		start := len(payload)

		switch w.header.Flag.GetSignalCompression() {
		case format.SignalVBZ:
			packed, err := w.signalCodec.Compress(encoding.EncodeSignal(nil, samples))
			if err != nil {
				return nil, fmt.Errorf("compress signal of row %d: %w", i, err)
			}
			payload = append(payload, packed...)
		default:
			payload = encoding.AppendRawSignal(payload, samples)
		}

		chunkSizes[i] = uint32(len(payload) - start) //nolint: gosec
	}

	return payload, nil
}

func (w *Writer) write(b []byte) error {
	if _, err := w.f.Write(b); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	w.offset += uint64(len(b))

	return nil
}

// Close writes the footer, rewrites the header, syncs and closes the file.
// Calling Close again is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.finish()
	if cerr := w.f.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close %s: %w", w.path, cerr))
	}

	return err
}

func (w *Writer) finish() error {
	footer := &section.Footer{
		Creator:   w.creator,
		PoreTypes: w.poreTypes,
		RunInfos:  w.runInfos,
		Batches:   w.batches,
	}

	data, err := footer.AppendTo(nil, w.engine)
	if err != nil {
		return fmt.Errorf("encode footer: %w", err)
	}

	w.header.FooterOffset = w.offset
	w.header.FooterSize = uint32(len(data))      //nolint: gosec
	w.header.BatchCount = uint32(len(w.batches)) //nolint: gosec

	if err := w.write(data); err != nil {
		return err
	}

	if _, err := w.f.WriteAt(w.header.Bytes(), 0); err != nil {
		return fmt.Errorf("rewrite header: %w", err)
	}

	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", w.path, err)
	}

	return nil
}
