package section

import (
	"fmt"
	"time"

	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
)

// FileHeader represents the fixed-size header at the start of a readpack container.
// It is 32 bytes. The footer location is only known once all batches are written,
// so writers emit a placeholder header first and rewrite it on close.
type FileHeader struct {
	// Flag is a packed field for various flags and magic number (0xEC10).
	Flag FileFlag // 4 bytes, offset 0-3

	// CreatedAt is the creation time of the file, unix timestamp in microseconds.
	CreatedAt int64 // 8 bytes, offset 4-11
	// RowInfoVersion is the row-info table version the batches were written with.
	RowInfoVersion uint16 // 2 bytes, offset 12-13
	// Reserved for future use, must be zero.
	Reserved uint16 // 2 bytes, offset 14-15
	// FooterOffset is the absolute byte offset of the footer.
	FooterOffset uint64 // 8 bytes, offset 16-23
	// FooterSize is the size of the footer in bytes, including its trailing checksum.
	FooterSize uint32 // 4 bytes, offset 24-27
	// BatchCount is the number of batches recorded in the footer index.
	BatchCount uint32 // 4 bytes, offset 28-31
}

// NewFileHeader creates a header with default flags stamped with createdAt.
func NewFileHeader(createdAt time.Time, rowInfoVersion uint16) *FileHeader {
	return &FileHeader{
		Flag:           NewFileFlag(),
		CreatedAt:      createdAt.UnixMicro(),
		RowInfoVersion: rowInfoVersion,
	}
}

// Parse parses the header from a byte slice.
// It returns an error if the data is not exactly 32 bytes or if the flags are invalid.
func (h *FileHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: got %d bytes", errs.ErrInvalidHeaderSize, len(data))
	}

	// Options is always little-endian; it carries the endianness bit for the rest.
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.SignalCompression = data[2]
	h.Flag.RowCompression = data[3]

	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.GetEndianEngine()

	h.CreatedAt = int64(engine.Uint64(data[4:12])) //nolint: gosec
	h.RowInfoVersion = engine.Uint16(data[12:14])
	h.Reserved = engine.Uint16(data[14:16])
	h.FooterOffset = engine.Uint64(data[16:24])
	h.FooterSize = engine.Uint32(data[24:28])
	h.BatchCount = engine.Uint32(data[28:32])

	return nil
}

// Bytes serializes the FileHeader into a byte slice.
func (h *FileHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := h.GetEndianEngine()

	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.SignalCompression
	b[3] = h.Flag.RowCompression
	engine.PutUint64(b[4:12], uint64(h.CreatedAt)) //nolint: gosec
	engine.PutUint16(b[12:14], h.RowInfoVersion)
	engine.PutUint16(b[14:16], h.Reserved)
	engine.PutUint64(b[16:24], h.FooterOffset)
	engine.PutUint32(b[24:28], h.FooterSize)
	engine.PutUint32(b[28:32], h.BatchCount)

	return b
}

// CreatedAtAsTime returns the creation time as a time.Time object.
func (h *FileHeader) CreatedAtAsTime() time.Time {
	return time.UnixMicro(h.CreatedAt)
}

// GetEndianEngine returns the appropriate endian engine based on the header flags.
func (h *FileHeader) GetEndianEngine() endian.EndianEngine {
	if h.Flag.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// ParseFileHeader parses a FileHeader from a byte slice.
func ParseFileHeader(data []byte) (FileHeader, error) {
	var h FileHeader
	if err := h.Parse(data); err != nil {
		return FileHeader{}, err
	}

	return h, nil
}
