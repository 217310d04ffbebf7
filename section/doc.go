// Package section defines the low-level binary structures of the readpack container format.
//
// A readpack file is laid out as:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (32 bytes, fixed)                                │
//	│  - Flag (4 bytes): magic, endianness, compressions      │
//	│  - CreatedAt, RowInfoVersion                            │
//	│  - FooterOffset, FooterSize, BatchCount                 │
//	├─────────────────────────────────────────────────────────┤
//	│ Batch block 0..N-1 (variable)                           │
//	│  - Row payload (compressed columns + local dictionaries)│
//	│  - Signal payload (per-read VBZ or raw int16)           │
//	├─────────────────────────────────────────────────────────┤
//	│ Footer (variable)                                       │
//	│  - Creator, pore type table, run infos                  │
//	│  - Batch index (N × 32 bytes)                           │
//	│  - xxHash64 checksum                                    │
//	└─────────────────────────────────────────────────────────┘
//
// The header is written twice: once as a placeholder when the file is created
// and again on close, after the footer location is known.
//
// Only the Options field of the flag is fixed little-endian. Every other
// multi-byte value uses the byte order selected by the endianness bit.
package section
