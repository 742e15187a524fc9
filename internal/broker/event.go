package broker

import "context"

// Event is the tagged-variant persistence event of spec section 3/4.6. Each
// concrete type carries the minimum data needed to reproduce its mutation
// against a Store, and knows how to apply itself — the Go equivalent of the
// original `TopicEvent::handle(self, thread_data)` dispatch.
type Event interface {
	// Apply performs the durable mutation this event describes. Errors are
	// logged by the caller (Worker) and discarded: no retry, no dead-letter.
	Apply(ctx context.Context, store Store) error
}

type CreateMessageTopicEvent struct{ Name string }

func (e CreateMessageTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.CreateMessageTopic(ctx, e.Name)
}

type DeleteMessageTopicEvent struct{ Name string }

func (e DeleteMessageTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.DeleteMessageTopic(ctx, e.Name)
}

// PublishMessageTopicEvent carries Count so publish_multiple stays a single
// event rather than N events — the Store mutation is `data_index += Count`,
// which commutes regardless of application order across workers (§5).
type PublishMessageTopicEvent struct {
	Name  string
	Count uint64
}

func (e PublishMessageTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.PublishMessageTopic(ctx, e.Name, e.Count)
}

type ResetIndexMessageTopicEvent struct {
	Name       string
	Subtrahend uint64
}

func (e ResetIndexMessageTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.ResetMessageTopicIndex(ctx, e.Name, e.Subtrahend)
}

type AddPublisherMessageTopicEvent struct{ Name, Publisher string }

func (e AddPublisherMessageTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.AddMessageTopicPublisher(ctx, e.Name, e.Publisher)
}

type RemovePublisherMessageTopicEvent struct{ Name, Publisher string }

func (e RemovePublisherMessageTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.RemoveMessageTopicPublisher(ctx, e.Name, e.Publisher)
}

type AddSubscriberMessageTopicEvent struct {
	Name       string
	Subscriber string
	Cursor     uint64
}

func (e AddSubscriberMessageTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.AddMessageTopicSubscriber(ctx, e.Name, e.Subscriber, e.Cursor)
}

type RemoveSubscriberMessageTopicEvent struct{ Name, Subscriber string }

func (e RemoveSubscriberMessageTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.RemoveMessageTopicSubscriber(ctx, e.Name, e.Subscriber)
}

// FetchDataMessageTopicEvent is the one read-path event: get_new_data_for_subscriber
// enqueues it so durable state tracks subscriber progress (§4.5).
type FetchDataMessageTopicEvent struct {
	Name       string
	Subscriber string
	Cursor     uint64
}

func (e FetchDataMessageTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.UpdateMessageTopicSubscriberCursor(ctx, e.Name, e.Subscriber, e.Cursor)
}

type CreateTaskTopicEvent struct{ Name string }

func (e CreateTaskTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.CreateTaskTopic(ctx, e.Name)
}

type DeleteTaskTopicEvent struct{ Name string }

func (e DeleteTaskTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.DeleteTaskTopic(ctx, e.Name)
}

// PublishTaskTopicEvent is intentionally a no-op in the default Store
// adapter beyond existence bookkeeping: task payloads are not durable
// (Non-goals), so there is no column to write. See store/pgstore.go.
type PublishTaskTopicEvent struct {
	Name  string
	Count int
}

func (e PublishTaskTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.PublishTaskTopic(ctx, e.Name, e.Count)
}

type AddPublisherTaskTopicEvent struct{ Name, Publisher string }

func (e AddPublisherTaskTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.AddTaskTopicPublisher(ctx, e.Name, e.Publisher)
}

type RemovePublisherTaskTopicEvent struct{ Name, Publisher string }

func (e RemovePublisherTaskTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.RemoveTaskTopicPublisher(ctx, e.Name, e.Publisher)
}

type AddSubscriberTaskTopicEvent struct{ Name, Subscriber string }

func (e AddSubscriberTaskTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.AddTaskTopicSubscriber(ctx, e.Name, e.Subscriber)
}

type RemoveSubscriberTaskTopicEvent struct{ Name, Subscriber string }

func (e RemoveSubscriberTaskTopicEvent) Apply(ctx context.Context, s Store) error {
	return s.RemoveTaskTopicSubscriber(ctx, e.Name, e.Subscriber)
}
