// Package errors provides structured error types for nativemap.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the schema name, the dotted field path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSchema, errors.KindInvalidCount).
//		Schema("Header").
//		Path("items").
//		Detail("count field %q must precede the field it sizes", "n").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingTarget("Header", "child", "pointer-to-array")
//	err := errors.OutOfBounds(0x1000, 8)
//
// Schema construction errors form one class that can be tested with
//
//	errors.Is(err, errors.ErrSchema)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
