// Package table implements a generational index table: a growable slab that
// hands out compact handles ("tiny pointers") instead of Go pointers and
// detects use of a handle after its slot has been freed or reused.
//
// # Handles
//
// A Handle is an index plus a generation tag:
//
//	t := table.New[string](4)
//
//	h := t.Allocate("hello")
//	v, ok := t.Get(h) // "hello", true
//
//	t.Free(h)
//	_, ok = t.Get(h) // false: the slot's generation moved on
//
// Every slot carries a generation counter that advances each time the slot
// is freed. A handle only resolves while its generation matches the slot's,
// so handles issued before a slot was reused never alias the new value.
// Stale handles, out-of-range indices and double frees are reported as
// absent results, never as errors or panics.
//
// # Growth
//
// When no free slot remains, Allocate doubles the capacity. Existing handles
// keep their index and generation across growth. Capacity never shrinks.
//
// # Mutation hazard
//
// GetMut returns a pointer into the slot storage. The pointer is valid only
// until the next call that may reallocate or release that slot: any Allocate
// (which may grow the table) and any Free or Clear of that slot. Writes
// through a pointer held across a resize land in the discarded backing array
// and are silently lost. Prefer Update for in-place changes.
//
// # Thread Safety
//
// A Table is NOT safe for concurrent use. It is meant to be owned by a single
// goroutine; callers sharing it must provide their own locking.
//
// # Generation wrap
//
// Generations are uint32 and wrap after 2^32 free cycles of the same slot. A
// handle held across exactly that many reuses would match again. This is an
// accepted limitation.
package table
