package testbed

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/tinyptr"
	"github.com/wippyai/tinyptr/host"
	"github.com/wippyai/tinyptr/table"
)

// snapshot collects every live value keyed by the handle's string form.
func snapshot[T any](t *tinyptr.Table[T]) map[string]T {
	out := make(map[string]T)
	for h, v := range t.All() {
		out[h.String()] = v
	}
	return out
}

func TestIntegration_AllocFree(t *testing.T) {
	tbl := tinyptr.New[int](8)

	handles := make([]tinyptr.Handle, 0, 20)
	for i := 0; i < 20; i++ {
		handles = append(handles, tbl.Allocate(i))
	}

	for i, h := range handles {
		if v, ok := tbl.Get(h); !ok || v != i {
			t.Fatalf("Get(handles[%d]) = %v, %v, want %d", i, v, ok, i)
		}
	}

	for i, h := range handles {
		if i%2 == 0 {
			if v, ok := tbl.Free(h); !ok || v != i {
				t.Fatalf("Free(handles[%d]) = %v, %v, want %d", i, v, ok, i)
			}
		}
	}

	want := make(map[string]int)
	for i, h := range handles {
		if i%2 == 0 {
			if _, ok := tbl.Get(h); ok {
				t.Fatalf("handles[%d] still valid after Free", i)
			}
			continue
		}
		want[h.String()] = i
	}
	if diff := cmp.Diff(want, snapshot(tbl)); diff != "" {
		t.Fatalf("live values mismatch (-want +got):\n%s", diff)
	}
}

func TestIntegration_Resize(t *testing.T) {
	tbl := tinyptr.New[int](4)
	initial := tbl.Capacity()

	for i := 0; i < 100; i++ {
		tbl.Allocate(i)
	}

	if tbl.Capacity() <= initial {
		t.Fatalf("Capacity() = %d, want > %d", tbl.Capacity(), initial)
	}
	if tbl.Capacity() != 128 {
		t.Fatalf("Capacity() = %d, want 128 after doubling from 4", tbl.Capacity())
	}
}

func TestIntegration_GetMut(t *testing.T) {
	tbl := tinyptr.New[int](4)
	h := tbl.Allocate(42)

	p := tbl.GetMut(h)
	if p == nil {
		t.Fatal("GetMut returned nil")
	}
	*p = 99

	if v, _ := tbl.Get(h); v != 99 {
		t.Fatalf("Get(h) = %d, want 99", v)
	}
}

func TestIntegration_GenerationSafety(t *testing.T) {
	tbl := tinyptr.New[int](4)
	p := tbl.Allocate(10)

	if v, ok := tbl.Free(p); !ok || v != 10 {
		t.Fatalf("Free(p) = %v, %v, want 10, true", v, ok)
	}

	q := tbl.Allocate(20)
	if _, ok := tbl.Get(p); ok {
		t.Fatal("old handle resolved after slot reuse")
	}
	if v, ok := tbl.Get(q); !ok || v != 20 {
		t.Fatalf("Get(q) = %v, %v, want 20, true", v, ok)
	}
}

func TestIntegration_ManyAllocationsAndFrees(t *testing.T) {
	tbl := tinyptr.New[int](8)

	handles := make([]tinyptr.Handle, 0, 1000)
	for i := 0; i < 1000; i++ {
		handles = append(handles, tbl.Allocate(i))
	}
	for i, h := range handles {
		if v, ok := tbl.Get(h); !ok || v != i {
			t.Fatalf("Get(handles[%d]) = %v, %v", i, v, ok)
		}
	}

	for _, h := range handles {
		tbl.Free(h)
	}
	for i, h := range handles {
		if _, ok := tbl.Get(h); ok {
			t.Fatalf("handles[%d] valid after freeing everything", i)
		}
	}
	if tbl.Allocated() != 0 {
		t.Fatalf("Allocated() = %d, want 0", tbl.Allocated())
	}

	// Every freed index is reusable without growth.
	capacity := tbl.Capacity()
	for i := 0; i < capacity; i++ {
		tbl.Allocate(i)
	}
	if tbl.Capacity() != capacity {
		t.Fatalf("Capacity() = %d after refilling, want %d", tbl.Capacity(), capacity)
	}
}

func TestIntegration_MixedUsage(t *testing.T) {
	tbl := tinyptr.New[int](16)
	var live []tinyptr.Handle
	want := make(map[string]int)

	for i := 0; i < 500; i++ {
		if i%3 == 0 && len(live) > 0 {
			idx := i % len(live)
			h := live[idx]
			live = append(live[:idx], live[idx+1:]...)

			v, ok := tbl.Free(h)
			if !ok {
				t.Fatalf("step %d: Free of a live handle failed", i)
			}
			if v != want[h.String()] {
				t.Fatalf("step %d: Free returned %d, want %d", i, v, want[h.String()])
			}
			delete(want, h.String())
			continue
		}
		h := tbl.Allocate(i)
		live = append(live, h)
		want[h.String()] = i
	}

	if diff := cmp.Diff(want, snapshot(tbl)); diff != "" {
		t.Fatalf("live values mismatch (-want +got):\n%s", diff)
	}
	if got := tbl.Stats(); got.Allocated != len(live) || got.Free != got.Capacity-len(live) {
		t.Fatalf("Stats() = %+v with %d live handles", got, len(live))
	}
}

func TestIntegration_HostModuleSharesHandles(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	m := host.New(host.Options{ModuleName: "tinyptr-test", InitialCapacity: 2})
	if _, err := m.Instantiate(ctx, rt); err != nil {
		t.Fatalf("Instantiate failed: %v", err)
	}
	mod, err := rt.Instantiate(ctx, m.Proxy())
	if err != nil {
		t.Fatalf("proxy instantiate failed: %v", err)
	}

	allocate := mod.ExportedFunction("allocate")
	free := mod.ExportedFunction("free")
	capacity := mod.ExportedFunction("capacity")

	var handles []table.Handle
	for i := uint64(0); i < 5; i++ {
		res, err := allocate.Call(ctx, i*100)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		handles = append(handles, table.FromBits(res[0]))
	}

	res, err := free.Call(ctx, handles[2].Bits())
	if err != nil {
		t.Fatalf("free: %v", err)
	}
	if res[0] != 200 || api.DecodeU32(res[1]) != 1 {
		t.Fatalf("free = %v, want [200 1]", res)
	}

	var got []uint64
	for _, h := range handles {
		if v, ok := m.Get(h); ok {
			got = append(got, v)
		}
	}
	if diff := cmp.Diff([]uint64{0, 100, 300, 400}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	res, err = capacity.Call(ctx)
	if err != nil {
		t.Fatalf("capacity: %v", err)
	}
	if int64(res[0]) != 8 {
		t.Fatalf("capacity = %d, want 8", res[0])
	}

	want := table.Stats{Capacity: 8, Allocated: 4, Free: 4, Resizes: 2, LoadFactor: 0.5}
	if diff := cmp.Diff(want, m.Stats()); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}
