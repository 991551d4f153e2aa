// Package errors provides structured error types for tinyptr.
//
// Errors are categorized by Phase (the table or tool operation that failed)
// and Kind (error category). The Error type carries an optional path, the Go
// type involved, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConstruct, errors.KindInvalidCapacity).
//		GoType("table.Table[int]").
//		Value(0).
//		Detail("initial capacity must be positive").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidCapacity(0)
//	err := errors.StaleHandle(errors.PhaseFree, "3:7")
//
// Stale or unknown handles are not errors inside the table itself; the table
// reports them as absent results. These constructors exist for the layers
// above it (the wasm host module and the CLI) that need to surface the
// condition to a user.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
