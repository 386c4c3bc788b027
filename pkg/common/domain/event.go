package domain

type Event interface {
	Type() string
}

// KeyedEvent is implemented by events bound to a single aggregate.
// Publishers use the key to keep events of one aggregate in order.
type KeyedEvent interface {
	Event
	Key() string
}

type EventDispatcher interface {
	Dispatch(event Event) error
}
