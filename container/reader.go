package container

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/readpack/compress"
	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/internal/hash"
	"github.com/arloliu/readpack/internal/pool"
	"github.com/arloliu/readpack/section"
)

// Reader provides random access to the batches and dictionaries of a readpack file.
//
// Open reads the header and footer; batch blocks are read on demand by Batch.
//
// Note: Reader is NOT thread-safe.
type Reader struct {
	f      *os.File
	path   string
	header section.FileHeader
	engine endian.EndianEngine
	footer *section.Footer

	rowCodec    compress.Codec
	signalCodec compress.Codec

	readCount uint64
	closed    bool
}

// Open opens the container at path and validates its header and footer.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	r, err := newReader(f, path)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return r, nil
}

func newReader(f *os.File, path string) (*Reader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := uint64(info.Size()) //nolint: gosec

	buf := make([]byte, section.HeaderSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %w", errs.ErrInvalidHeaderSize, path, err)
	}

	header, err := section.ParseFileHeader(buf)
	if err != nil {
		return nil, fmt.Errorf("parse header of %s: %w", path, err)
	}

	if header.FooterOffset < section.FirstBatchOffset || header.FooterOffset+uint64(header.FooterSize) != size {
		return nil, fmt.Errorf("%w: footer [%d, +%d) does not end the %d byte file (unfinished write?)",
			errs.ErrCorruptPayload, header.FooterOffset, header.FooterSize, size)
	}

	data := make([]byte, header.FooterSize)
	if _, err := f.ReadAt(data, int64(header.FooterOffset)); err != nil { //nolint: gosec
		return nil, fmt.Errorf("read footer of %s: %w", path, err)
	}

	engine := header.GetEndianEngine()

	footer, err := section.ParseFooter(data, engine)
	if err != nil {
		return nil, fmt.Errorf("parse footer of %s: %w", path, err)
	}

	if len(footer.Batches) != int(header.BatchCount) {
		return nil, fmt.Errorf("%w: header lists %d batches, footer %d",
			errs.ErrCorruptPayload, header.BatchCount, len(footer.Batches))
	}

	rowCodec, err := compress.GetCodec(header.Flag.GetRowCompression())
	if err != nil {
		return nil, err
	}

	r := &Reader{
		f:           f,
		path:        path,
		header:      header,
		engine:      engine,
		footer:      footer,
		rowCodec:    rowCodec,
		signalCodec: compress.NewZstdCompressor(),
	}

	for _, entry := range footer.Batches {
		if entry.Offset < section.FirstBatchOffset || entry.Offset+entry.BlockSize() > header.FooterOffset {
			return nil, fmt.Errorf("%w: batch block at %d overlaps header or footer", errs.ErrCorruptPayload, entry.Offset)
		}
		r.readCount += uint64(entry.RowCount)
	}

	return r, nil
}

// Header returns the file header.
func (r *Reader) Header() section.FileHeader {
	return r.header
}

// Creator returns the creator tag recorded by the writer.
func (r *Reader) Creator() string {
	return r.footer.Creator
}

// BatchCount returns the number of batches.
func (r *Reader) BatchCount() int {
	return len(r.footer.Batches)
}

// BatchRowCount returns the number of reads in batch i without loading it.
func (r *Reader) BatchRowCount(i int) (int, error) {
	if i < 0 || i >= len(r.footer.Batches) {
		return 0, fmt.Errorf("%w: %d of %d", errs.ErrInvalidBatchIndex, i, len(r.footer.Batches))
	}

	return int(r.footer.Batches[i].RowCount), nil
}

// ReadCount returns the total number of reads.
func (r *Reader) ReadCount() uint64 {
	return r.readCount
}

// PoreTypes returns the file-level pore-type dictionary in code order.
func (r *Reader) PoreTypes() []string {
	return append([]string(nil), r.footer.PoreTypes...)
}

// RunInfoCount returns the number of run infos.
func (r *Reader) RunInfoCount() int {
	return len(r.footer.RunInfos)
}

// RunInfo decodes run info i. The returned value is owned by the caller.
func (r *Reader) RunInfo(i int) (*RunInfo, error) {
	if r.closed {
		return nil, errs.ErrReaderClosed
	}
	if i < 0 || i >= len(r.footer.RunInfos) {
		return nil, fmt.Errorf("%w: run info %d of %d", errs.ErrInvalidDictionaryIndex, i, len(r.footer.RunInfos))
	}

	return decodeRunInfo(r.footer.RunInfos[i], r.engine)
}

// Batch loads batch i. The caller must Release the returned batch.
func (r *Reader) Batch(i int) (*ReadBatch, error) {
	if r.closed {
		return nil, errs.ErrReaderClosed
	}
	if i < 0 || i >= len(r.footer.Batches) {
		return nil, fmt.Errorf("%w: %d of %d", errs.ErrInvalidBatchIndex, i, len(r.footer.Batches))
	}

	entry := r.footer.Batches[i]

	buf := pool.GetPayloadBuffer()
	buf.Resize(int(entry.BlockSize())) //nolint: gosec

	if _, err := r.f.ReadAt(buf.B, int64(entry.Offset)); err != nil { //nolint: gosec
		pool.PutPayloadBuffer(buf)
		return nil, fmt.Errorf("read batch %d: %w", i, err)
	}

	rowsData := buf.B[:entry.RowsSize]
	signalData := buf.B[entry.RowsSize:]

	if got := hash.Checksum(rowsData, signalData); got != entry.Checksum {
		pool.PutPayloadBuffer(buf)
		return nil, fmt.Errorf("%w: batch %d checksum 0x%016x, want 0x%016x", errs.ErrChecksumMismatch, i, got, entry.Checksum)
	}

	rows, err := r.rowCodec.Decompress(rowsData)
	if err != nil {
		pool.PutPayloadBuffer(buf)
		return nil, fmt.Errorf("%w: batch %d rows: %w", errs.ErrCorruptPayload, i, err)
	}

	decoded, err := decodeRows(rows, r.engine)
	if err != nil {
		pool.PutPayloadBuffer(buf)
		return nil, fmt.Errorf("batch %d: %w", i, err)
	}

	if len(decoded.records) != int(entry.RowCount) {
		pool.PutPayloadBuffer(buf)
		return nil, fmt.Errorf("%w: batch %d has %d rows, index says %d",
			errs.ErrRowCountMismatch, i, len(decoded.records), entry.RowCount)
	}

	b, err := newReadBatch(decoded, signalData, buf, r)
	if err != nil {
		pool.PutPayloadBuffer(buf)
		return nil, fmt.Errorf("batch %d: %w", i, err)
	}

	return b, nil
}

// Close closes the underlying file. Calling Close again is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close %s: %w", r.path, err)
	}

	return nil
}
