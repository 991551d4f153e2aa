package table

import (
	"iter"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/tinyptr/errors"
)

// MaxCapacity is the largest slot count a table can reach.
// Indices are uint32, so a table holds at most 2^32 slots.
const MaxCapacity = 1 << 32

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Table stores values of type T in reusable slots addressed by Handle.
//
// Free slots are reused last-freed-first. After construction or growth the
// lowest new index is handed out first. Callers must not depend on this order.
//
// A Table is not safe for concurrent use.
type Table[T any] struct {
	slots     []slot[T]
	free      []uint32
	observers []*subscription
	resizes   int
}

// New creates a table with initialCapacity free slots, all at generation 0.
// It panics with a *errors.Error if initialCapacity is not in [1, MaxCapacity].
func New[T any](initialCapacity int) *Table[T] {
	if initialCapacity <= 0 || uint64(initialCapacity) > MaxCapacity {
		panic(errors.InvalidCapacity(initialCapacity))
	}

	t := &Table[T]{
		slots: make([]slot[T], initialCapacity),
		free:  make([]uint32, 0, initialCapacity),
	}
	t.pushFree(0, initialCapacity)
	return t
}

// pushFree appends indices [lo, hi) so that lo is popped first.
func (t *Table[T]) pushFree(lo, hi int) {
	for i := hi - 1; i >= lo; i-- {
		t.free = append(t.free, uint32(i))
	}
}

// Capacity returns the current number of slots.
func (t *Table[T]) Capacity() int {
	return len(t.slots)
}

// Allocated returns the number of occupied slots.
func (t *Table[T]) Allocated() int {
	return len(t.slots) - len(t.free)
}

// LoadFactor returns Allocated divided by Capacity, in [0, 1].
func (t *Table[T]) LoadFactor() float64 {
	return float64(t.Allocated()) / float64(t.Capacity())
}

// Stats returns a snapshot of occupancy counters.
func (t *Table[T]) Stats() Stats {
	return Stats{
		Capacity:   t.Capacity(),
		Allocated:  t.Allocated(),
		Free:       len(t.free),
		Resizes:    t.resizes,
		LoadFactor: t.LoadFactor(),
	}
}

// Allocate stores value in a free slot and returns its handle.
// If no slot is free the table grows first. Amortized O(1).
func (t *Table[T]) Allocate(value T) Handle {
	if len(t.free) == 0 {
		t.Resize()
	}

	last := len(t.free) - 1
	idx := t.free[last]
	t.free = t.free[:last]

	s := &t.slots[idx]
	s.value = value
	s.occupied = true

	h := Handle{index: idx, generation: s.generation}
	t.notify(Event{Type: EventAllocated, Handle: h, Capacity: len(t.slots)})
	return h
}

// lookup returns the slot h refers to, or nil if h is out of range, names a
// free slot, or carries a different generation.
func (t *Table[T]) lookup(h Handle) *slot[T] {
	if uint64(h.index) >= uint64(len(t.slots)) {
		return nil
	}
	s := &t.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return nil
	}
	return s
}

// Contains reports whether h refers to a live value.
func (t *Table[T]) Contains(h Handle) bool {
	return t.lookup(h) != nil
}

// Get returns a copy of the value h refers to.
// It returns the zero value and false if h is stale or out of range.
func (t *Table[T]) Get(h Handle) (T, bool) {
	s := t.lookup(h)
	if s == nil {
		var zero T
		return zero, false
	}
	return s.value, true
}

// GetMut returns a pointer to the value h refers to, or nil if h is stale or
// out of range.
//
// The pointer must not be used after the next Allocate, or after Free or
// Clear releases the slot. See the package documentation.
func (t *Table[T]) GetMut(h Handle) *T {
	s := t.lookup(h)
	if s == nil {
		return nil
	}
	return &s.value
}

// Update calls fn with a pointer to the value h refers to and reports whether
// h was valid. fn must not call back into t.
func (t *Table[T]) Update(h Handle, fn func(*T)) bool {
	s := t.lookup(h)
	if s == nil {
		return false
	}
	fn(&s.value)
	return true
}

// Free removes and returns the value h refers to, advancing the slot's
// generation so that h and every copy of it stop resolving.
// A stale or out-of-range h returns the zero value and false and changes
// nothing, so freeing the same handle twice is harmless.
func (t *Table[T]) Free(h Handle) (T, bool) {
	var zero T

	s := t.lookup(h)
	if s == nil {
		return zero, false
	}

	value := s.value
	s.value = zero
	s.occupied = false
	s.generation++
	t.free = append(t.free, h.index)

	t.notify(Event{Type: EventFreed, Handle: h, Capacity: len(t.slots)})
	return value, true
}

// Resize doubles the capacity, appending free slots at generation 0.
// Allocate calls it when the free list is empty; calling it directly
// pre-grows the table. Existing handles stay valid.
// It panics with a *errors.Error if the new capacity would exceed MaxCapacity.
func (t *Table[T]) Resize() {
	oldCap := len(t.slots)
	if uint64(oldCap)*2 > MaxCapacity {
		panic(errors.CapacityOverflow(uint64(oldCap), MaxCapacity))
	}
	newCap := oldCap * 2

	t.slots = append(t.slots, make([]slot[T], oldCap)...)
	t.pushFree(oldCap, newCap)
	t.resizes++

	Logger().Debug("table resized",
		zap.Int("old_capacity", oldCap),
		zap.Int("new_capacity", newCap))

	t.notify(Event{Type: EventResized, Capacity: newCap})
}

// Clear frees every occupied slot, invalidating all outstanding handles.
// Values implementing Dropper have Drop called after removal.
// Capacity is unchanged.
func (t *Table[T]) Clear() {
	for i := range t.slots {
		s := &t.slots[i]
		if !s.occupied {
			continue
		}
		value, _ := t.Free(Handle{index: uint32(i), generation: s.generation})
		if d, ok := any(value).(Dropper); ok {
			d.Drop()
		}
	}
}

// Each calls fn for every occupied slot in index order until fn returns false.
// fn must not mutate t.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	for i := range t.slots {
		s := &t.slots[i]
		if !s.occupied {
			continue
		}
		if !fn(Handle{index: uint32(i), generation: s.generation}, s.value) {
			return
		}
	}
}

// All returns an iterator over occupied slots in index order.
func (t *Table[T]) All() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		t.Each(yield)
	}
}

type subscription struct {
	observer Observer
}

// Subscribe adds an observer for table events. The returned func removes
// this registration and works for any observer, including ObserverFunc.
func (t *Table[T]) Subscribe(o Observer) (unsubscribe func()) {
	sub := &subscription{observer: o}
	t.observers = append(t.observers, sub)
	return func() { t.remove(sub) }
}

// Unsubscribe removes the first registration of o. The observer's dynamic
// type must be comparable (use a pointer); otherwise call the func returned
// by Subscribe.
func (t *Table[T]) Unsubscribe(o Observer) {
	for _, sub := range t.observers {
		if sub.observer == o {
			t.remove(sub)
			return
		}
	}
}

func (t *Table[T]) remove(sub *subscription) {
	for i, s := range t.observers {
		if s == sub {
			t.observers = slices.Delete(t.observers, i, i+1)
			return
		}
	}
}

func (t *Table[T]) notify(e Event) {
	for _, sub := range t.observers {
		sub.observer.OnTableEvent(e)
	}
}
