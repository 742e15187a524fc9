package broker

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestMessageTopicFanOut exercises spec §8 Scenario A: two subscribers
// joining at different points each see only what was published after they
// joined, and every message published before they leave arrives in order.
func TestMessageTopicFanOut(t *testing.T) {
	topic := NewMessageTopic[int]("orders", discardLogger())

	require.NoError(t, topic.AddPublisher("p"))
	_, err := topic.AddSubscriber("s1")
	require.NoError(t, err)

	_, err = topic.PublishMultiple([]int{1, 2})
	require.NoError(t, err)

	_, err = topic.AddSubscriber("s2")
	require.NoError(t, err)

	_, err = topic.Publish(3)
	require.NoError(t, err)

	data1, index1, err := topic.Fetch("s1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, data1)
	assert.Equal(t, uint64(3), index1)

	data2, _, err := topic.Fetch("s2")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, data2)

	for _, name := range []string{"s1", "s2"} {
		newData, err := topic.HasNewData(name)
		require.NoError(t, err)
		assert.False(t, newData)
	}
}

// TestMessageTopicNewSubscriberSkipsHistory exercises spec §8 Scenario E.
func TestMessageTopicNewSubscriberSkipsHistory(t *testing.T) {
	topic := NewMessageTopic[string]("events", discardLogger())
	require.NoError(t, topic.AddPublisher("p"))

	_, err := topic.PublishMultiple([]string{"a", "b", "c"})
	require.NoError(t, err)

	_, err = topic.AddSubscriber("late")
	require.NoError(t, err)

	newData, err := topic.HasNewData("late")
	require.NoError(t, err)
	assert.False(t, newData)

	data, _, err := topic.Fetch("late")
	require.NoError(t, err)
	assert.Empty(t, data)
}

// TestMessageTopicUnknownSubscriber covers the precondition-violation path:
// Fetch/HasNewData on an unregistered subscriber returns ErrSubscriberNotFound,
// never a panic.
func TestMessageTopicUnknownSubscriber(t *testing.T) {
	topic := NewMessageTopic[int]("t", discardLogger())

	_, _, err := topic.Fetch("ghost")
	assert.ErrorIs(t, err, ErrSubscriberNotFound)

	_, err = topic.HasNewData("ghost")
	assert.ErrorIs(t, err, ErrSubscriberNotFound)
}

// TestMessageTopicDuplicateSubscriber covers invariant-adjacent bookkeeping:
// adding the same subscriber twice is rejected, not silently overwritten.
func TestMessageTopicDuplicateSubscriber(t *testing.T) {
	topic := NewMessageTopic[int]("t", discardLogger())
	_, err := topic.AddSubscriber("s")
	require.NoError(t, err)

	_, err = topic.AddSubscriber("s")
	assert.ErrorIs(t, err, ErrSubscriberExists)
}

// TestMessageTopicCompactionPreservesGap exercises spec §8 invariant 7:
// reset_index(m) preserves index - cursor(s) for every subscriber, so the
// publish that triggers compaction widens the gap by exactly the one
// payload it adds. The overflow path is forced directly on the unexported
// index field rather than publishing 2^64 messages; the subscriber first
// fetches so its cursor (the subtrahend m) is non-zero.
func TestMessageTopicCompactionPreservesGap(t *testing.T) {
	topic := NewMessageTopic[int]("t", discardLogger())
	_, err := topic.AddSubscriber("behind")
	require.NoError(t, err)

	_, err = topic.PublishMultiple([]int{1, 2, 3})
	require.NoError(t, err)
	_, _, err = topic.Fetch("behind")
	require.NoError(t, err)

	topic.index = ^uint64(0) // force the next publish to overflow

	cursorBefore := topic.subscribers["behind"]
	gapBefore := topic.index - cursorBefore

	subtrahend, err := topic.PublishMultiple([]int{4})
	require.NoError(t, err)
	assert.Greater(t, subtrahend, uint64(0))

	cursorAfter := topic.subscribers["behind"]
	gapAfter := topic.index - cursorAfter
	assert.Equal(t, gapBefore+1, gapAfter)
}

// TestMessageTopicCompactionRequiresSubscribers documents the open-question
// resolution of spec §9: compaction with zero subscribers is fatal, not a
// silent clamp.
func TestMessageTopicCompactionRequiresSubscribers(t *testing.T) {
	topic := NewMessageTopic[int]("t", discardLogger())
	topic.index = ^uint64(0) // force the next publish to overflow

	_, err := topic.Publish(1)
	assert.ErrorIs(t, err, ErrIndexOverflow)
}
