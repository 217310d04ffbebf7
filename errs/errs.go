// Package errs defines the sentinel errors shared by the readpack packages.
//
// Call sites wrap these with fmt.Errorf("%w: ...") to add context; callers
// discriminate with errors.Is.
package errs

import "errors"

// Dictionary and string lookup errors.
var (
	ErrStringNotLongEnough    = errors.New("string buffer not long enough")
	ErrStringTooLong          = errors.New("string exceeds maximum length")
	ErrInvalidDictionaryIndex = errors.New("invalid dictionary index")
	ErrDictionaryFull         = errors.New("dictionary is full")
	ErrResolveCeilingExceeded = errors.New("string resolution exceeded buffer ceiling")
)

// Layout errors.
var (
	ErrInvalidHeaderSize     = errors.New("invalid header size")
	ErrInvalidHeaderFlags    = errors.New("invalid header flags")
	ErrInvalidIndexEntrySize = errors.New("invalid index entry size")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrCorruptPayload        = errors.New("corrupt payload")
)

// Access errors.
var (
	ErrInvalidBatchIndex         = errors.New("invalid batch index")
	ErrInvalidRowIndex           = errors.New("invalid row index")
	ErrUnsupportedRowInfoVersion = errors.New("unsupported row info version")
	ErrRowCountMismatch          = errors.New("row count mismatch")
	ErrSampleCountMismatch       = errors.New("sample count mismatch")
	ErrSignalBufferTooSmall      = errors.New("signal buffer too small")
	ErrInvalidRunInfo            = errors.New("invalid run info")
	ErrWriterClosed              = errors.New("writer is closed")
	ErrReaderClosed              = errors.New("reader is closed")
)
