package section

import (
	"fmt"

	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/format"
)

// FileFlag represents the packed field for various flags in the file header.
type FileFlag struct {
	// Options is a packed field for various options.
	// Bit 0 is reserved for future use, must be set to 0.
	// Bit 1 is endianness flag, 0 means little-endian, 1 means big-endian.
	// Bits 2-3 are reserved for future use, must be set to 0.
	// Bits 4-15 are magic number to identify the container format:
	//   - 0xEC10 (0b1110_1100_0001_0000): readpack container format v1
	Options uint16

	// SignalCompression indicates how per-read signal samples are stored.
	// Valid values: SignalUncompressed, SignalVBZ
	SignalCompression uint8

	// RowCompression indicates the codec used for the row metadata payload of each batch.
	// Valid values: CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4
	RowCompression uint8
}

// NewFileFlag creates a new FileFlag with default settings: little-endian, VBZ signal, zstd rows.
func NewFileFlag() FileFlag {
	flag := FileFlag{
		Options:           MagicReadpackV1Opt,
		SignalCompression: uint8(format.SignalVBZ),
		RowCompression:    uint8(format.CompressionZstd),
	}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the data is little-endian.
func (f FileFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the data is big-endian.
func (f FileFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *FileFlag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *FileFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// GetMagicNumber returns the magic number from the Options field.
func (f FileFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

func (f *FileFlag) SetSignalCompression(c format.SignalCompression) {
	f.SignalCompression = uint8(c)
}

func (f FileFlag) GetSignalCompression() format.SignalCompression {
	return format.SignalCompression(f.SignalCompression)
}

func (f *FileFlag) SetRowCompression(c format.CompressionType) {
	f.RowCompression = uint8(c)
}

func (f FileFlag) GetRowCompression() format.CompressionType {
	return format.CompressionType(f.RowCompression)
}

// Validate checks if the flag contains valid values.
func (f FileFlag) Validate() error {
	if f.GetMagicNumber() != MagicReadpackV1Opt {
		return fmt.Errorf("%w: magic number 0x%04X", errs.ErrInvalidHeaderFlags, f.GetMagicNumber())
	}

	if (f.Options & ReservedBitsMask) != 0 {
		return fmt.Errorf("%w: reserved bits set", errs.ErrInvalidHeaderFlags)
	}

	if !f.GetSignalCompression().IsValid() {
		return fmt.Errorf("%w: signal compression %d", errs.ErrInvalidHeaderFlags, f.SignalCompression)
	}

	switch f.GetRowCompression() {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
	default:
		return fmt.Errorf("%w: row compression %d", errs.ErrInvalidHeaderFlags, f.RowCompression)
	}

	return nil
}
