package table

import "fmt"

// Handle identifies one occupancy period of a slot in a Table.
//
// Handles are plain values: copy them, compare them with ==, use them as map
// keys. They own nothing. The zero Handle is not a sentinel; it names slot 0
// at generation 0.
type Handle struct {
	index      uint32
	generation uint32
}

// Index returns the slot position.
func (h Handle) Index() uint32 {
	return h.index
}

// Generation returns the occupancy tag of the slot at the time the handle
// was issued.
func (h Handle) Generation() uint32 {
	return h.generation
}

// String formats the handle as index:generation.
func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.index, h.generation)
}

// Bits packs the handle into one word, index in the high 32 bits.
// Used to pass handles across ABI boundaries such as wasm host calls.
func (h Handle) Bits() uint64 {
	return uint64(h.index)<<32 | uint64(h.generation)
}

// FromBits unpacks a word produced by Bits.
// The result is still validated by the table on every use, so a word that was
// never produced by Bits resolves to nothing unless it happens to name a live
// slot with a matching generation.
func FromBits(bits uint64) Handle {
	return Handle{
		index:      uint32(bits >> 32),
		generation: uint32(bits),
	}
}
