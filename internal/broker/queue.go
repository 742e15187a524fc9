package broker

import (
	"context"
	"sync"
)

// EventQueue is a thread-safe, unbounded FIFO of persistence Events. It is
// the single structure shared between the cooperative front-end (Broker API
// producers) and the worker-pool consumers (§4.1, §4.4).
//
// No fairness guarantee is made between concurrent consumers beyond what
// sync.Mutex itself provides.
//
// Per spec §9 ("Busy-polling workers"), Enqueue also signals a buffered
// notify channel so WorkerPool can block on Wait instead of spinning a
// dequeue→yield loop.
type EventQueue struct {
	mutex  sync.Mutex
	events []Event
	closed bool
	notify chan struct{}
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{notify: make(chan struct{}, 1)}
}

// Enqueue appends an event to the tail. It never fails under normal
// operation; the queue is unbounded (§9 flags a bounded variant as a
// future direction, not a requirement).
func (q *EventQueue) Enqueue(e Event) {
	q.mutex.Lock()
	if q.closed {
		q.mutex.Unlock()
		return
	}
	q.events = append(q.events, e)
	q.mutex.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Wait blocks until an event is likely available, the queue is closed, or
// ctx is done — whichever comes first. It returns false only when ctx is
// done; a spurious wake with an empty queue is possible and callers should
// simply retry Dequeue.
func (q *EventQueue) Wait(ctx context.Context) bool {
	select {
	case <-q.notify:
		return true
	case <-ctx.Done():
		return false
	}
}

// Dequeue removes and returns the head event, or (nil, false) if empty.
func (q *EventQueue) Dequeue() (Event, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.events) == 0 {
		return nil, false
	}
	e := q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]
	return e, true
}

// IsEmpty reports whether the queue currently holds no events.
func (q *EventQueue) IsEmpty() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.events) == 0
}

// Len reports the current depth of the queue. Used for diagnostics and tests.
func (q *EventQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.events)
}

// Close marks the queue closed; further Enqueue calls are silently dropped.
// Draining (Dequeue) still works on whatever remains, so a worker pool can
// finish in-flight work during shutdown.
func (q *EventQueue) Close() {
	q.mutex.Lock()
	q.closed = true
	q.mutex.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Closed reports whether Close has been called.
func (q *EventQueue) Closed() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.closed
}
