// Package encoding provides the low-level codecs of the readpack batch layout.
//
// # Columns
//
// ColumnWriter and ColumnReader append and consume fixed-width values and
// length-prefixed strings in the byte order of the file. A batch row payload
// is a sequence of such columns, one run of values per field:
//
//	w := encoding.NewColumnWriter(engine)
//	for _, ch := range channels {
//	    w.Uint16(ch)
//	}
//	payload := w.Finish()
//
// ColumnReader keeps the first error it hits; check Err once after a run of
// reads instead of after every value.
//
// # Signals
//
// EncodeSignal stores samples as zigzag varints of the difference to the
// previous sample, the first stage of VBZ. The result is then compressed
// with zstd by the container. AppendRawSignal and DecodeRawSignal handle
// uncompressed signals.
//
// # Strings and Tags
//
// String tables (the per-batch dictionaries) and tag maps (run-info context
// tags and tracking ids) have their own helpers; tag maps are written with
// sorted keys so equal maps encode to equal bytes.
package encoding
