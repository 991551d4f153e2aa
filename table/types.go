package table

// EventType identifies a table lifecycle notification.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventFreed
	EventResized
)

// String returns the event name.
func (e EventType) String() string {
	switch e {
	case EventAllocated:
		return "allocated"
	case EventFreed:
		return "freed"
	case EventResized:
		return "resized"
	default:
		return "unknown"
	}
}

// Event describes one table mutation.
// Handle is unset for EventResized. Capacity is the capacity after the change.
type Event struct {
	Handle   Handle
	Capacity int
	Type     EventType
}

// Observer receives table events synchronously, from inside the mutating call.
// Observers must not call back into the table that notified them.
type Observer interface {
	OnTableEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnTableEvent calls f(e).
func (f ObserverFunc) OnTableEvent(e Event) {
	f(e)
}

// Dropper is optionally implemented by stored values that need cleanup when
// the table discards them in Clear. Free does not call Drop: it hands the
// value back to the caller, who then owns it.
type Dropper interface {
	Drop()
}

// Stats is a point-in-time view of table occupancy.
type Stats struct {
	Capacity   int
	Allocated  int
	Free       int
	Resizes    int
	LoadFactor float64
}
