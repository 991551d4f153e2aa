// Package tinyptr provides a generational index table: compact, reusable
// handles ("tiny pointers") in place of Go pointers, with detection of handles
// whose slot has since been freed or reused.
//
// # Architecture Overview
//
//	tinyptr/            Root package re-exporting the table API
//	├── table/          Table engine: slots, free list, growth, generations
//	├── host/           wazero host module exposing a table to wasm guests
//	├── errors/         Structured error types
//	├── cmd/tinyptr/    Script runner and interactive TUI
//	└── examples/       Runnable examples
//
// # Quick Start
//
//	t := tinyptr.New[string](4)
//
//	h := t.Allocate("entity")
//	v, ok := t.Get(h) // "entity", true
//
//	t.Free(h)
//	_, ok = t.Get(h) // false, forever: the slot's generation advanced
//
// Stale handles, out-of-range indices and double frees return absent results
// instead of errors. Constructing a table with a non-positive capacity
// panics.
//
// # Thread Safety
//
// A Table is NOT thread-safe and should be owned by a single goroutine, or
// access must be synchronized. The host package wraps its table in a mutex
// because guest instances may call it concurrently.
//
// # Memory Model
//
// Capacity doubles when the table is full and never shrinks. Freed slots are
// reused. Pointers obtained from GetMut are invalidated by any Allocate, since
// growth moves the slot storage.
package tinyptr
