package container

import (
	"fmt"
	"time"

	"github.com/arloliu/readpack/format"
	"github.com/arloliu/readpack/internal/options"
)

// DefaultCreator is the creator tag written when WithCreator is not given.
const DefaultCreator = "readpack"

// WriterOption configures a Writer at creation time.
type WriterOption = options.Option[*Writer]

// WithCreator sets the creator tag stored in the footer.
func WithCreator(creator string) WriterOption {
	return options.NoError(func(w *Writer) {
		w.creator = creator
	})
}

// WithSignalCompression selects how read signals are stored. VBZ is the default.
func WithSignalCompression(c format.SignalCompression) WriterOption {
	return options.New(func(w *Writer) error {
		if !c.IsValid() {
			return fmt.Errorf("invalid signal compression: %v", c)
		}
		w.header.Flag.SetSignalCompression(c)

		return nil
	})
}

// WithRowCompression selects the codec for row payloads. Zstd is the default.
func WithRowCompression(c format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		switch c {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			w.header.Flag.SetRowCompression(c)
			return nil
		default:
			return fmt.Errorf("invalid row compression: %v", c)
		}
	})
}

// WithLittleEndian sets the writer to use little-endian byte order.
// It is the default option.
func WithLittleEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.header.Flag.WithLittleEndian()
		w.engine = w.header.GetEndianEngine()
	})
}

// WithBigEndian sets the writer to use big-endian byte order.
func WithBigEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.header.Flag.WithBigEndian()
		w.engine = w.header.GetEndianEngine()
	})
}

// WithCreatedAt overrides the creation time recorded in the header.
func WithCreatedAt(t time.Time) WriterOption {
	return options.NoError(func(w *Writer) {
		w.header.CreatedAt = t.UnixMicro()
	})
}
