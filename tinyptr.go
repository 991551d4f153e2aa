package tinyptr

import "github.com/wippyai/tinyptr/table"

// Handle is a compact index plus generation identifying a stored value.
type Handle = table.Handle

// Table is a generational index table of T values.
type Table[T any] = table.Table[T]

// MaxCapacity is the largest slot count a table can reach.
const MaxCapacity = table.MaxCapacity

// New creates a table with initialCapacity free slots.
// It panics with a *errors.Error if initialCapacity is not in [1, MaxCapacity].
func New[T any](initialCapacity int) *Table[T] {
	return table.New[T](initialCapacity)
}
