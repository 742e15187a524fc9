package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore is a broker.Store fake that records every call it
// receives, for asserting spec §8 Scenario F (worker drains queue).
type recordingStore struct {
	mu      sync.Mutex
	created []string
}

func (s *recordingStore) CreateMessageTopic(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, name)
	return nil
}
func (s *recordingStore) DeleteMessageTopic(ctx context.Context, name string) error { return nil }
func (s *recordingStore) PublishMessageTopic(ctx context.Context, name string, count uint64) error {
	return nil
}
func (s *recordingStore) ResetMessageTopicIndex(ctx context.Context, name string, subtrahend uint64) error {
	return nil
}
func (s *recordingStore) AddMessageTopicPublisher(ctx context.Context, topic, publisher string) error {
	return nil
}
func (s *recordingStore) RemoveMessageTopicPublisher(ctx context.Context, topic, publisher string) error {
	return nil
}
func (s *recordingStore) AddMessageTopicSubscriber(ctx context.Context, topic, subscriber string, cursor uint64) error {
	return nil
}
func (s *recordingStore) RemoveMessageTopicSubscriber(ctx context.Context, topic, subscriber string) error {
	return nil
}
func (s *recordingStore) UpdateMessageTopicSubscriberCursor(ctx context.Context, topic, subscriber string, cursor uint64) error {
	return nil
}
func (s *recordingStore) CreateTaskTopic(ctx context.Context, name string) error { return nil }
func (s *recordingStore) DeleteTaskTopic(ctx context.Context, name string) error { return nil }
func (s *recordingStore) PublishTaskTopic(ctx context.Context, name string, count int) error {
	return nil
}
func (s *recordingStore) AddTaskTopicPublisher(ctx context.Context, topic, publisher string) error {
	return nil
}
func (s *recordingStore) RemoveTaskTopicPublisher(ctx context.Context, topic, publisher string) error {
	return nil
}
func (s *recordingStore) AddTaskTopicSubscriber(ctx context.Context, topic, subscriber string) error {
	return nil
}
func (s *recordingStore) RemoveTaskTopicSubscriber(ctx context.Context, topic, subscriber string) error {
	return nil
}

var _ Store = (*recordingStore)(nil)

func (s *recordingStore) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.created...)
}

// TestWorkerPoolDrainsQueue exercises spec §8 Scenario F: after the pool
// quiesces, every enqueued Create event has reached the Store.
func TestWorkerPoolDrainsQueue(t *testing.T) {
	queue := NewEventQueue()
	st := &recordingStore{}
	pool := NewWorkerPool(WorkerPoolConfig{WorkerCount: 3}, queue, st, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 50; i++ {
		queue.Enqueue(CreateMessageTopicEvent{Name: "t"})
	}

	require.Eventually(t, func() bool {
		return len(st.snapshot()) == 50
	}, 2*time.Second, 5*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, pool.Stop(stopCtx))
}

// TestWorkerPoolStopDrainsInFlight checks that Stop applies events already
// queued before cancellation instead of dropping them.
func TestWorkerPoolStopDrainsInFlight(t *testing.T) {
	queue := NewEventQueue()
	st := &recordingStore{}
	pool := NewWorkerPool(WorkerPoolConfig{WorkerCount: 1}, queue, st, discardLogger())

	ctx := context.Background()
	pool.Start(ctx)

	for i := 0; i < 10; i++ {
		queue.Enqueue(CreateMessageTopicEvent{Name: "t"})
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(stopCtx))

	assert.Len(t, st.snapshot(), 10)
}
