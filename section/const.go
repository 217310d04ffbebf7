package section

const (
	// Bit masks
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000D // Mask for reserved bits (bits 0, 2, 3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicReadpackV1Opt is the version 1 magic number of the readpack container format.
	MagicReadpackV1Opt = 0xEC10
)

// offset and section sizes in the container file
const (
	HeaderSize          = 32         // fixed header size in bytes
	BatchIndexEntrySize = 32         // fixed batch index entry size in bytes
	FirstBatchOffset    = HeaderSize // byte offset where the first batch block starts
	footerChecksumSize  = 8          // trailing xxHash64 of the footer body
)
