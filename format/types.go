package format

type (
	CompressionType   uint8
	SignalCompression uint8
	EndReason         uint8
)

// RowInfoVersion is the newest row-info table layout understood by this package.
// Every row fetch carries the version the caller was built against so that
// future schema additions are detected instead of silently truncated.
const RowInfoVersion uint16 = 3

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	SignalUncompressed SignalCompression = 0x1 // SignalUncompressed stores raw little-endian int16 samples.
	SignalVBZ          SignalCompression = 0x2 // SignalVBZ stores delta/zigzag varint samples compressed with zstd.
)

const (
	EndReasonUnknown EndReason = iota
	EndReasonMuxChange
	EndReasonUnblockMuxChange
	EndReasonDataServiceUnblockMuxChange
	EndReasonSignalPositive
	EndReasonSignalNegative

	endReasonCount
)

var endReasonNames = [endReasonCount]string{
	"unknown",
	"mux_change",
	"unblock_mux_change",
	"data_service_unblock_mux_change",
	"signal_positive",
	"signal_negative",
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType maps a configuration name to a CompressionType.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch name {
	case "none", "None":
		return CompressionNone, true
	case "zstd", "Zstd":
		return CompressionZstd, true
	case "s2", "S2":
		return CompressionS2, true
	case "lz4", "LZ4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

func (s SignalCompression) String() string {
	switch s {
	case SignalUncompressed:
		return "Uncompressed"
	case SignalVBZ:
		return "VBZ"
	default:
		return "Unknown"
	}
}

// IsValid reports whether s is a known signal compression.
func (s SignalCompression) IsValid() bool {
	return s == SignalUncompressed || s == SignalVBZ
}

// String returns the dictionary name of the end reason, e.g. "mux_change".
func (e EndReason) String() string {
	if e >= endReasonCount {
		return "unknown"
	}

	return endReasonNames[e]
}

// IsValid reports whether e is a known end reason.
func (e EndReason) IsValid() bool {
	return e < endReasonCount
}

// DefaultForced returns the forced flag a read gets when the producer did not record one.
// Reasons driven by the sequencer (mux changes and unblocks) are forced, signal-driven
// reasons and unknown are not.
func (e EndReason) DefaultForced() bool {
	switch e { //nolint: exhaustive
	case EndReasonMuxChange, EndReasonUnblockMuxChange, EndReasonDataServiceUnblockMuxChange:
		return true
	default:
		return false
	}
}

// ParseEndReason returns the end reason with the given dictionary name.
func ParseEndReason(name string) (EndReason, bool) {
	for i, n := range endReasonNames {
		if n == name {
			return EndReason(i), true //nolint: gosec
		}
	}

	return EndReasonUnknown, false
}
