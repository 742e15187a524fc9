package broker

import (
	"context"
	"log/slog"
)

// Broker is the Broker API of spec §4.5: one method per user-visible
// operation. Every mutating method follows the fixed four-step protocol —
// locate topic, validate precondition, mutate in-memory, enqueue a
// persistence event — in that order, and never in a different order.
//
// Precondition-violation policy (spec §4.5/§7): a violated precondition is
// logged as a warning and reported back as a structured negative result
// (a bool, an absent model). It is never an error returned to Transport,
// and it never enqueues a persistence event. The one exception the spec
// carves out for 404/409 is topic existence on the four CRUD operations
// (create/delete/get), which DO surface as errors so Transport can map
// them to status codes.
type Broker struct {
	state  *SharedState
	logger *slog.Logger
}

// NewBroker wires a Broker API instance over shared state.
func NewBroker(state *SharedState, logger *slog.Logger) *Broker {
	return &Broker{state: state, logger: logger}
}

func (b *Broker) enqueue(e Event) { b.state.Events().Enqueue(e) }

// --- message topics -------------------------------------------------------

// GetAllMessageTopics returns every message topic's read projection.
func (b *Broker) GetAllMessageTopics(ctx context.Context) []MessageTopicModel {
	topics := b.state.allMessageTopics()
	out := make([]MessageTopicModel, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.ToModel())
	}
	return out
}

// GetMessageTopic returns a single topic's read projection, or
// (zero, false) if it does not exist.
func (b *Broker) GetMessageTopic(ctx context.Context, name string) (MessageTopicModel, bool) {
	t, ok := b.state.messageTopic(name)
	if !ok {
		return MessageTopicModel{}, false
	}
	return t.ToModel(), true
}

// CreateMessageTopic creates a new, empty message topic. Returns
// ErrTopicAlreadyExists (maps to HTTP 409) if name is taken.
func (b *Broker) CreateMessageTopic(ctx context.Context, name string) (MessageTopicModel, error) {
	t, err := b.state.createMessageTopic(name, b.logger.With("topic", name))
	if err != nil {
		b.logger.Warn("create message topic: already exists", "topic", name)
		return MessageTopicModel{}, err
	}
	b.enqueue(CreateMessageTopicEvent{Name: name})
	return t.ToModel(), nil
}

// DeleteMessageTopic removes a message topic. Returns ErrTopicNotFound
// (maps to HTTP 404) if it does not exist.
func (b *Broker) DeleteMessageTopic(ctx context.Context, name string) error {
	if err := b.state.deleteMessageTopic(name); err != nil {
		b.logger.Warn("delete message topic: not found", "topic", name)
		return err
	}
	b.enqueue(DeleteMessageTopicEvent{Name: name})
	return nil
}

// AddMessageTopicPublisher registers a publisher on a message topic. A
// missing topic or an already-registered publisher is a logged no-op —
// Transport always reports 204 per spec §6's table.
func (b *Broker) AddMessageTopicPublisher(ctx context.Context, topic, publisher string) {
	t, ok := b.state.messageTopic(topic)
	if !ok {
		b.logger.Warn("add publisher: topic not found", "topic", topic, "publisher", publisher)
		return
	}
	if err := t.AddPublisher(publisher); err != nil {
		return
	}
	b.enqueue(AddPublisherMessageTopicEvent{Name: topic, Publisher: publisher})
}

// RemoveMessageTopicPublisher deregisters a publisher. Missing topic or
// publisher is a logged no-op.
func (b *Broker) RemoveMessageTopicPublisher(ctx context.Context, topic, publisher string) {
	t, ok := b.state.messageTopic(topic)
	if !ok {
		b.logger.Warn("remove publisher: topic not found", "topic", topic, "publisher", publisher)
		return
	}
	if err := t.RemovePublisher(publisher); err != nil {
		return
	}
	b.enqueue(RemovePublisherMessageTopicEvent{Name: topic, Publisher: publisher})
}

// PublishToMessageTopic publishes payloads on behalf of publisher. If the
// topic does not exist, or publisher is not a registered publisher of it,
// this is Scenario C: a silent, logged no-op — no mutation, no event,
// HTTP still answers 204.
func (b *Broker) PublishToMessageTopic(ctx context.Context, topic, publisher string, payloads []Payload) {
	t, ok := b.state.messageTopic(topic)
	if !ok {
		b.logger.Warn("publish: topic not found", "topic", topic)
		return
	}
	if !t.IsPublisher(publisher) {
		b.logger.Warn("publish: unauthorized publisher", "topic", topic, "publisher", publisher)
		return
	}

	subtrahend, err := t.PublishMultiple(payloads)
	if err != nil {
		b.logger.Error("publish: index overflow with no subscribers", "topic", topic, "error", err)
		return
	}
	b.enqueue(PublishMessageTopicEvent{Name: topic, Count: uint64(len(payloads))})
	if subtrahend > 0 {
		b.enqueue(ResetIndexMessageTopicEvent{Name: topic, Subtrahend: subtrahend})
	}
}

// AddMessageTopicSubscriber registers a subscriber at the topic's current
// index — it never sees history (spec invariant 3). Missing topic or
// already-registered subscriber is a logged no-op.
func (b *Broker) AddMessageTopicSubscriber(ctx context.Context, topic, subscriber string) {
	t, ok := b.state.messageTopic(topic)
	if !ok {
		b.logger.Warn("add subscriber: topic not found", "topic", topic, "subscriber", subscriber)
		return
	}
	cursor, err := t.AddSubscriber(subscriber)
	if err != nil {
		return
	}
	b.enqueue(AddSubscriberMessageTopicEvent{Name: topic, Subscriber: subscriber, Cursor: cursor})
}

// RemoveMessageTopicSubscriber deregisters a subscriber. Missing topic or
// subscriber is a logged no-op.
func (b *Broker) RemoveMessageTopicSubscriber(ctx context.Context, topic, subscriber string) {
	t, ok := b.state.messageTopic(topic)
	if !ok {
		b.logger.Warn("remove subscriber: topic not found", "topic", topic, "subscriber", subscriber)
		return
	}
	if err := t.RemoveSubscriber(subscriber); err != nil {
		return
	}
	b.enqueue(RemoveSubscriberMessageTopicEvent{Name: topic, Subscriber: subscriber})
}

// IsNewDataForSubscriber reports whether subscriber has unfetched data.
// The second return is false if the topic does not exist.
func (b *Broker) IsNewDataForSubscriber(ctx context.Context, topic, subscriber string) (bool, bool) {
	t, ok := b.state.messageTopic(topic)
	if !ok {
		return false, false
	}
	newData, err := t.HasNewData(subscriber)
	if err != nil {
		b.logger.Warn("is_new_data: subscriber not found", "topic", topic, "subscriber", subscriber)
		return false, false
	}
	return newData, true
}

// GetNewDataForSubscriber fetches and returns pending data for subscriber,
// advancing its cursor, then enqueues a FetchDataMessageTopicEvent carrying
// the updated cursor (spec §4.5's one read-path exception). The second
// return is false if the topic does not exist.
func (b *Broker) GetNewDataForSubscriber(ctx context.Context, topic, subscriber string) ([]Payload, bool) {
	t, ok := b.state.messageTopic(topic)
	if !ok {
		return nil, false
	}
	data, cursor, err := t.Fetch(subscriber)
	if err != nil {
		b.logger.Warn("get_data: subscriber not found", "topic", topic, "subscriber", subscriber)
		return nil, false
	}
	b.enqueue(FetchDataMessageTopicEvent{Name: topic, Subscriber: subscriber, Cursor: cursor})
	return data, true
}

// --- task topics -----------------------------------------------------------

// GetAllTaskTopics returns every task topic's read projection.
func (b *Broker) GetAllTaskTopics(ctx context.Context) []TaskTopicModel {
	topics := b.state.allTaskTopics()
	out := make([]TaskTopicModel, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.ToModel())
	}
	return out
}

// GetTaskTopic returns a single task topic's read projection, or
// (zero, false) if it does not exist.
func (b *Broker) GetTaskTopic(ctx context.Context, name string) (TaskTopicModel, bool) {
	t, ok := b.state.taskTopic(name)
	if !ok {
		return TaskTopicModel{}, false
	}
	return t.ToModel(), true
}

// CreateTaskTopic creates a new, empty task topic. Returns
// ErrTopicAlreadyExists (maps to HTTP 409) if name is taken.
func (b *Broker) CreateTaskTopic(ctx context.Context, name string) (TaskTopicModel, error) {
	t, err := b.state.createTaskTopic(name, b.logger.With("topic", name))
	if err != nil {
		b.logger.Warn("create task topic: already exists", "topic", name)
		return TaskTopicModel{}, err
	}
	b.enqueue(CreateTaskTopicEvent{Name: name})
	return t.ToModel(), nil
}

// DeleteTaskTopic removes a task topic. Returns ErrTopicNotFound (maps to
// HTTP 404) if it does not exist.
func (b *Broker) DeleteTaskTopic(ctx context.Context, name string) error {
	if err := b.state.deleteTaskTopic(name); err != nil {
		b.logger.Warn("delete task topic: not found", "topic", name)
		return err
	}
	b.enqueue(DeleteTaskTopicEvent{Name: name})
	return nil
}

// AddTaskTopicPublisher registers a publisher on a task topic. Missing
// topic or an already-registered publisher is a logged no-op.
func (b *Broker) AddTaskTopicPublisher(ctx context.Context, topic, publisher string) {
	t, ok := b.state.taskTopic(topic)
	if !ok {
		b.logger.Warn("add publisher: topic not found", "topic", topic, "publisher", publisher)
		return
	}
	if err := t.AddPublisher(publisher); err != nil {
		return
	}
	b.enqueue(AddPublisherTaskTopicEvent{Name: topic, Publisher: publisher})
}

// RemoveTaskTopicPublisher deregisters a publisher. Missing topic or
// publisher is a logged no-op.
func (b *Broker) RemoveTaskTopicPublisher(ctx context.Context, topic, publisher string) {
	t, ok := b.state.taskTopic(topic)
	if !ok {
		b.logger.Warn("remove publisher: topic not found", "topic", topic, "publisher", publisher)
		return
	}
	if err := t.RemovePublisher(publisher); err != nil {
		return
	}
	b.enqueue(RemovePublisherTaskTopicEvent{Name: topic, Publisher: publisher})
}

// PublishToTaskTopic publishes task payloads on behalf of publisher. A
// missing topic or unauthorized publisher is a silent, logged no-op,
// mirroring message-topic Scenario C.
func (b *Broker) PublishToTaskTopic(ctx context.Context, topic, publisher string, payloads []Payload) {
	t, ok := b.state.taskTopic(topic)
	if !ok {
		b.logger.Warn("publish: topic not found", "topic", topic)
		return
	}
	if !t.IsPublisher(publisher) {
		b.logger.Warn("publish: unauthorized publisher", "topic", topic, "publisher", publisher)
		return
	}
	t.PublishMultiple(payloads)
	b.enqueue(PublishTaskTopicEvent{Name: topic, Count: len(payloads)})
}

// AddTaskTopicSubscriber registers a subscriber as eligible to consume
// tasks. Missing topic or already-registered subscriber is a logged no-op.
func (b *Broker) AddTaskTopicSubscriber(ctx context.Context, topic, subscriber string) {
	t, ok := b.state.taskTopic(topic)
	if !ok {
		b.logger.Warn("add subscriber: topic not found", "topic", topic, "subscriber", subscriber)
		return
	}
	if err := t.AddSubscriber(subscriber); err != nil {
		return
	}
	b.enqueue(AddSubscriberTaskTopicEvent{Name: topic, Subscriber: subscriber})
}

// RemoveTaskTopicSubscriber deregisters a subscriber. Missing topic or
// subscriber is a logged no-op.
func (b *Broker) RemoveTaskTopicSubscriber(ctx context.Context, topic, subscriber string) {
	t, ok := b.state.taskTopic(topic)
	if !ok {
		b.logger.Warn("remove subscriber: topic not found", "topic", topic, "subscriber", subscriber)
		return
	}
	if err := t.RemoveSubscriber(subscriber); err != nil {
		return
	}
	b.enqueue(RemoveSubscriberTaskTopicEvent{Name: topic, Subscriber: subscriber})
}

// IsThereATaskForSubscriber reports whether the task topic currently holds
// any undelivered task. The second return is false if the topic does not
// exist. Unlike MessageTopic, this is not per-subscriber: any eligible
// subscriber may claim the next task (spec §4.3).
func (b *Broker) IsThereATaskForSubscriber(ctx context.Context, topic string) (bool, bool) {
	t, ok := b.state.taskTopic(topic)
	if !ok {
		return false, false
	}
	return t.HasOpenTasks(), true
}

// GetNewTaskForSubscriber pops and returns the next task for subscriber.
// (nil, false, topicFound) distinguishes "no topic" from "topic exists but
// no open task right now" (Scenario B's third call).
func (b *Broker) GetNewTaskForSubscriber(ctx context.Context, topic, subscriber string) (payload Payload, delivered bool, topicFound bool) {
	t, ok := b.state.taskTopic(topic)
	if !ok {
		return nil, false, false
	}
	p, ok, err := t.Fetch(subscriber)
	if err != nil {
		b.logger.Warn("get_task: subscriber not found", "topic", topic, "subscriber", subscriber)
		return nil, false, true
	}
	return p, ok, true
}
