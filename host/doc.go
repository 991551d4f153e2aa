// Package host exposes a handle table to WebAssembly guests as a wazero host
// module.
//
// Guests store 64-bit values on the host and receive handles packed into an
// i64 (see table.Handle.Bits). The module exports:
//
//	allocate(value i64) -> handle i64
//	get(handle i64) -> (value i64, ok i32)
//	set(handle i64, value i64) -> ok i32
//	free(handle i64) -> (value i64, ok i32)
//	capacity() -> i64
//	allocated() -> i64
//
// Stale handles are reported through ok = 0, never as traps.
//
//	rt := wazero.NewRuntime(ctx)
//	defer rt.Close(ctx)
//
//	m := host.New(host.DefaultOptions())
//	if _, err := m.Instantiate(ctx, rt); err != nil {
//	    return err
//	}
//	// instantiate guests importing "tinyptr"
//
// Host modules cannot be called through ExportedFunction. To drive the
// exports from Go, instantiate Proxy(), which re-exports them from a regular
// module:
//
//	proxy, err := rt.Instantiate(ctx, m.Proxy())
//	res, err := proxy.ExportedFunction("allocate").Call(ctx, 42)
//
// Unlike table.Table, a Module is safe for concurrent use: every guest call
// and every Go-side accessor takes the module's lock.
package host
