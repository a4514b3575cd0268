// Package errors provides structured error types for the binding generator.
//
// Errors are categorized by Phase (which stage of generation failed) and Kind
// (what went wrong). The Error type carries the path of declarations that led
// to the failure, the interface type involved, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLayout, errors.KindUnsupportedShape).
//		Path("fdstat", "fs_flags").
//		Type("list<u8>").
//		Detail("list nested in a record").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedShape(errors.PhaseRender, path, "anonymous variant")
//	err := errors.InvalidName(errors.PhaseRender, "fdWrite", "snake_case")
//
// All errors implement the standard error interface and support errors.Is/As.
// errors.Is(err, errors.ErrUnsupportedShape) matches an unsupported shape
// reported by any phase.
package errors
