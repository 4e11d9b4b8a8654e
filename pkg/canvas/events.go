package canvas

import "sync"

// EventKind tags an inbound event. The numeric values are part of the
// interpreted programs' contract: the poll-event opcode pushes the tag
// on top of any payload, and 0 means "no event pending". Tags 2 and 3
// are reserved for key down/up events.
type EventKind int64

const (
	EventNone       EventKind = 0
	EventClose      EventKind = 1
	EventMouseClick EventKind = 4
)

// Event is one inbound event. X and Y carry the pointer position in
// canvas pixel coordinates for EventMouseClick and are zero otherwise.
type Event struct {
	Kind EventKind
	X, Y int64
}

// EventQueue is a FIFO fed by the front-end thread and drained
// synchronously by the interpreter, hence the lock.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push appends an event.
func (q *EventQueue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, ev)
}

// Pop removes and returns the oldest event, reporting false when the
// queue is empty.
func (q *EventQueue) Pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return Event{}, false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev, true
}

// Len reports the number of pending events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
