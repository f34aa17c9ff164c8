package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-management/internal/events"
)

func TestDispatcher_PublishFillsMetadata(t *testing.T) {
	d := events.NewInMemoryDispatcher()

	var got events.Event
	d.Subscribe(events.EventUserCreated, func(_ context.Context, e events.Event) error {
		got = e
		return nil
	})

	err := d.Publish(context.Background(), events.Event{
		Type:   events.EventUserCreated,
		UserID: 1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, int64(1), got.UserID)
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	d := events.NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(events.EventUserDeleted, func(context.Context, events.Event) error {
		calls++
		return errors.New("handler failed")
	})
	d.Subscribe(events.EventUserDeleted, func(context.Context, events.Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), events.Event{Type: events.EventUserDeleted})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDispatcher_OnlyMatchingTypeInvoked(t *testing.T) {
	d := events.NewInMemoryDispatcher()

	created := 0
	d.Subscribe(events.EventUserCreated, func(context.Context, events.Event) error {
		created++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), events.Event{Type: events.EventUserUpdated}))
	assert.Zero(t, created)
}
