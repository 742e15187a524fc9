package broker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroker() *Broker {
	return NewBroker(NewSharedState(discardLogger()), discardLogger())
}

func raw(t *testing.T, v string) Payload {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// TestCreateMessageTopicDuplicate exercises spec §8 Scenario D: a second
// create of the same name is rejected and enqueues no event.
func TestCreateMessageTopicDuplicate(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker()

	_, err := b.CreateMessageTopic(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, 1, b.state.Events().Len())

	_, err = b.CreateMessageTopic(ctx, "orders")
	assert.ErrorIs(t, err, ErrTopicAlreadyExists)
	assert.Equal(t, 1, b.state.Events().Len(), "duplicate create must not enqueue a second event")
}

// TestPublishUnauthorizedPublisherIsSilent exercises spec §8 Scenario C:
// publishing under a name that is not a registered publisher leaves state
// untouched and enqueues nothing, with no error surfaced.
func TestPublishUnauthorizedPublisherIsSilent(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker()

	_, err := b.CreateMessageTopic(ctx, "orders")
	require.NoError(t, err)
	eventsAfterCreate := b.state.Events().Len()

	b.PublishToMessageTopic(ctx, "orders", "not-a-publisher", []Payload{raw(t, "a")})

	model, ok := b.GetMessageTopic(ctx, "orders")
	require.True(t, ok)
	assert.Equal(t, uint64(0), model.Index)
	assert.Equal(t, eventsAfterCreate, b.state.Events().Len())
}

// TestGetNewDataForSubscriberEnqueuesFetchEvent exercises spec §4.5's one
// read-path exception: get_new_data_for_subscriber enqueues a
// FetchDataMessageTopicEvent carrying the post-fetch cursor.
func TestGetNewDataForSubscriberEnqueuesFetchEvent(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker()

	_, err := b.CreateMessageTopic(ctx, "orders")
	require.NoError(t, err)
	b.AddMessageTopicPublisher(ctx, "orders", "p")
	b.AddMessageTopicSubscriber(ctx, "orders", "s")
	b.PublishToMessageTopic(ctx, "orders", "p", []Payload{raw(t, "a"), raw(t, "b")})

	eventsBefore := b.state.Events().Len()
	data, ok := b.GetNewDataForSubscriber(ctx, "orders", "s")
	require.True(t, ok)
	assert.Len(t, data, 2)
	assert.Equal(t, eventsBefore+1, b.state.Events().Len())

	newData, ok := b.IsNewDataForSubscriber(ctx, "orders", "s")
	require.True(t, ok)
	assert.False(t, newData)
}

// TestTaskTopicRoundTrip exercises spec §8 Scenario B end to end through
// the Broker API.
func TestTaskTopicRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker()

	_, err := b.CreateTaskTopic(ctx, "jobs")
	require.NoError(t, err)
	b.AddTaskTopicPublisher(ctx, "jobs", "p")
	b.AddTaskTopicSubscriber(ctx, "jobs", "s1")
	b.AddTaskTopicSubscriber(ctx, "jobs", "s2")

	b.PublishToTaskTopic(ctx, "jobs", "p", []Payload{raw(t, "x"), raw(t, "y")})

	p1, delivered1, found1 := b.GetNewTaskForSubscriber(ctx, "jobs", "s1")
	require.True(t, found1)
	require.True(t, delivered1)
	assert.JSONEq(t, `"x"`, string(p1))

	p2, delivered2, found2 := b.GetNewTaskForSubscriber(ctx, "jobs", "s2")
	require.True(t, found2)
	require.True(t, delivered2)
	assert.JSONEq(t, `"y"`, string(p2))

	_, delivered3, found3 := b.GetNewTaskForSubscriber(ctx, "jobs", "s1")
	require.True(t, found3)
	assert.False(t, delivered3)

	hasTask, found4 := b.IsThereATaskForSubscriber(ctx, "jobs")
	require.True(t, found4)
	assert.False(t, hasTask)
}

// TestDeleteUnknownTopicIsNotFound exercises the 404 precondition path for
// the one mutating operation the spec does carve an error out for.
func TestDeleteUnknownTopicIsNotFound(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker()
	assert.ErrorIs(t, b.DeleteMessageTopic(ctx, "ghost"), ErrTopicNotFound)
	assert.ErrorIs(t, b.DeleteTaskTopic(ctx, "ghost"), ErrTopicNotFound)
}
