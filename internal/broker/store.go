package broker

import "context"

// Store is the durable-persistence collaborator assumed by spec section 1.
// It exposes topic-CRUD primitives; the SQL dialect and migration runner
// are explicitly out of scope for the core (they live in internal/store).
//
// Every method here corresponds to one row-level mutation described in
// spec section 4.8 / section 6's persistent schema. Implementations MUST
// be safe for concurrent use by multiple Worker goroutines — the spec
// relies on the Store's own row-level locking, not on any lock held here.
type Store interface {
	CreateMessageTopic(ctx context.Context, name string) error
	DeleteMessageTopic(ctx context.Context, name string) error
	PublishMessageTopic(ctx context.Context, name string, count uint64) error
	ResetMessageTopicIndex(ctx context.Context, name string, subtrahend uint64) error
	AddMessageTopicPublisher(ctx context.Context, topic, publisher string) error
	RemoveMessageTopicPublisher(ctx context.Context, topic, publisher string) error
	AddMessageTopicSubscriber(ctx context.Context, topic, subscriber string, cursor uint64) error
	RemoveMessageTopicSubscriber(ctx context.Context, topic, subscriber string) error
	UpdateMessageTopicSubscriberCursor(ctx context.Context, topic, subscriber string, cursor uint64) error

	CreateTaskTopic(ctx context.Context, name string) error
	DeleteTaskTopic(ctx context.Context, name string) error
	PublishTaskTopic(ctx context.Context, name string, count int) error
	AddTaskTopicPublisher(ctx context.Context, topic, publisher string) error
	RemoveTaskTopicPublisher(ctx context.Context, topic, publisher string) error
	AddTaskTopicSubscriber(ctx context.Context, topic, subscriber string) error
	RemoveTaskTopicSubscriber(ctx context.Context, topic, subscriber string) error
}
