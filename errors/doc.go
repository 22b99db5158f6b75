// Package errors provides structured error types for bitcodec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, bit position, Go type and schema
// descriptions, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindUnknownVariant).
//		Path("constantPool", "[3]").
//		At(buf.Position()).
//		Detail("no variant for tag %d", tag).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.BufferUnderflow(pos, 16, 3)
//	err := errors.UnresolvedReference("count")
//
// Composite codecs prepend field names as errors bubble up with WithPath, so a
// failure deep inside a record reads as a dotted path:
//
//	[decode] buffer_underflow at header.entries.[2].name (bit 96, byte 12): need 8 bits, 0 remaining
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind matches a kind regardless of the phase that reported it.
package errors
