// Package copier copies reads from one readpack container into another.
//
// Each source batch carries its own pore-type and end-reason dictionaries, so
// a row's codes mean nothing outside the batch it was read from. The copier
// resolves every code back to its string (Resolve), maps pore-type strings to
// codes of the single destination dictionary (Interner) and rebuilds the rows
// as destination column batches (Transformer). Copier drives the whole run:
//
//	for each batch: load rows, load signals, transform, append, release
//	then: copy every run info
//
// Errors inside a batch are handled by an ErrorPolicy: PolicyContinue logs
// them and substitutes container.NoPoreType or format.EndReasonUnknown where a
// value is missing; PolicyAbort stops at the first one.
package copier
