package broker

import (
	"fmt"
	"log/slog"
)

// MessageTopic is an append-only fan-out log with per-subscriber read
// cursors (spec §3/§4.2): every subscriber eventually observes every
// payload. It is a flavor-specific view over the shared topic machinery in
// topic.go (spec §9's "collapse duplicated topic logic" redesign).
//
// index and every subscriber cursor live in the same coordinate space and
// are always kept congruent with len(data): a cursor value IS a valid
// slice index into data. Compaction (reset_index) preserves this by
// subtracting the same subtrahend from index, every cursor, and the head
// of data in one critical section.
type MessageTopic[T any] struct {
	*topic[T]
}

// NewMessageTopic creates an empty MessageTopic with no publishers or
// subscribers.
func NewMessageTopic[T any](name string, logger *slog.Logger) *MessageTopic[T] {
	return &MessageTopic[T]{newTopic[T](name, deliveryFanOut, logger)}
}

// Publish appends a single payload, incrementing index by one. See
// PublishMultiple for the atomic multi-payload form.
func (t *MessageTopic[T]) Publish(payload T) (uint64, error) {
	return t.publishMultiple([]T{payload})
}

// PublishMultiple appends payloads atomically with respect to index: either
// all are appended and index += len(payloads), or none are (on imminent
// overflow with no subscribers to compact against).
//
// The returned uint64 is the compaction subtrahend applied during this call
// (0 if none), so the Broker API can enqueue a matching
// ResetIndexMessageTopicEvent alongside the PublishMessageTopicEvent.
func (t *MessageTopic[T]) PublishMultiple(payloads []T) (uint64, error) {
	return t.publishMultiple(payloads)
}

// AddPublisher registers a publisher. Duplicate adds are a logged no-op.
func (t *MessageTopic[T]) AddPublisher(name string) error { return t.addPublisher(name) }

// RemovePublisher deregisters a publisher. Absent removes are a logged no-op.
func (t *MessageTopic[T]) RemovePublisher(name string) error { return t.removePublisher(name) }

// IsPublisher reports publisher membership.
func (t *MessageTopic[T]) IsPublisher(name string) bool { return t.isPublisher(name) }

// AddSubscriber registers a subscriber at the topic's current index — new
// subscribers never receive history (spec invariant 3).
func (t *MessageTopic[T]) AddSubscriber(name string) (uint64, error) { return t.addSubscriber(name) }

// RemoveSubscriber deregisters a subscriber. Absent removes are a logged no-op.
func (t *MessageTopic[T]) RemoveSubscriber(name string) error { return t.removeSubscriber(name) }

// IsSubscriber reports subscriber membership.
func (t *MessageTopic[T]) IsSubscriber(name string) bool { return t.isSubscriber(name) }

// HasNewData reports whether the subscriber's cursor trails the topic's
// index. Returns ErrSubscriberNotFound for an unknown subscriber.
func (t *MessageTopic[T]) HasNewData(name string) (bool, error) { return t.hasNewData(name) }

// Fetch returns every payload published since the subscriber's last fetch
// and advances its cursor to the topic's current index.
func (t *MessageTopic[T]) Fetch(name string) ([]T, uint64, error) { return t.fetchFanOut(name) }

// ToModel projects the topic for read APIs. The subscriber projection
// intentionally drops cursor values (spec §4.2).
func (t *MessageTopic[T]) ToModel() MessageTopicModel {
	t.mu.Lock()
	index := t.index
	t.mu.Unlock()
	return MessageTopicModel{Name: t.name, Index: index, Subscribers: t.subscriberNames()}
}

func (t *MessageTopic[T]) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("MessageTopic{name=%s index=%d subscribers=%d publishers=%d}",
		t.name, t.index, len(t.subscribers), len(t.publishers))
}
