package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTaskTopicSingleDelivery exercises spec §8 Scenario B: each publish is
// fetched by at most one subscriber, first-come-first-served.
func TestTaskTopicSingleDelivery(t *testing.T) {
	topic := NewTaskTopic[string]("jobs", discardLogger())
	require.NoError(t, topic.AddPublisher("p"))
	require.NoError(t, topic.AddSubscriber("s1"))
	require.NoError(t, topic.AddSubscriber("s2"))

	topic.PublishMultiple([]string{"x", "y"})

	v1, ok1, err := topic.Fetch("s1")
	require.NoError(t, err)
	require.True(t, ok1)
	assert.Equal(t, "x", v1)

	v2, ok2, err := topic.Fetch("s2")
	require.NoError(t, err)
	require.True(t, ok2)
	assert.Equal(t, "y", v2)

	_, ok3, err := topic.Fetch("s1")
	require.NoError(t, err)
	assert.False(t, ok3)
}

// TestTaskTopicFetchUnknownSubscriber covers the fatal-per-spec precondition:
// fetch by an unregistered subscriber is an error, not a panic.
func TestTaskTopicFetchUnknownSubscriber(t *testing.T) {
	topic := NewTaskTopic[string]("jobs", discardLogger())
	_, _, err := topic.Fetch("ghost")
	assert.ErrorIs(t, err, ErrSubscriberNotFound)
}

// TestTaskTopicHasOpenTasks exercises the queue-depth query independent of
// any particular subscriber.
func TestTaskTopicHasOpenTasks(t *testing.T) {
	topic := NewTaskTopic[int]("jobs", discardLogger())
	assert.False(t, topic.HasOpenTasks())

	topic.Publish(1)
	assert.True(t, topic.HasOpenTasks())

	require.NoError(t, topic.AddSubscriber("s"))
	_, ok, err := topic.Fetch("s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, topic.HasOpenTasks())
}

// TestTaskTopicDuplicatePublisher covers the precondition-violation policy
// for membership bookkeeping shared with MessageTopic via topic.go.
func TestTaskTopicDuplicatePublisher(t *testing.T) {
	topic := NewTaskTopic[int]("jobs", discardLogger())
	require.NoError(t, topic.AddPublisher("p"))
	assert.ErrorIs(t, topic.AddPublisher("p"), ErrPublisherExists)
}
