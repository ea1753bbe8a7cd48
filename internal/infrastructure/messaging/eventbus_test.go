package messaging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	var got []shared.EventType
	err := bus.Subscribe(shared.EventJobApplied, func(e shared.Event) error {
		got = append(got, e.EventType())
		return nil
	})
	require.NoError(t, err)

	var all []shared.EventType
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		all = append(all, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewEvent(shared.EventJobApplied, "s1", nil)))
	require.NoError(t, bus.Publish(shared.NewEvent(shared.EventPathCompleted, "s1", nil)))

	assert.Equal(t, []shared.EventType{shared.EventJobApplied}, got)
	assert.Equal(t, []shared.EventType{shared.EventJobApplied, shared.EventPathCompleted}, all)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	require.NoError(t, bus.Subscribe(shared.EventJobApplied, func(shared.Event) error {
		return errors.New("boom")
	}))

	delivered := false
	require.NoError(t, bus.Subscribe(shared.EventJobApplied, func(shared.Event) error {
		delivered = true
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewEvent(shared.EventJobApplied, "s1", nil)))
	assert.True(t, delivered)
}

func TestInMemoryEventBus_Close(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewEvent(shared.EventJobApplied, "s1", nil)), ErrBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventJobApplied, func(shared.Event) error { return nil }), ErrBusClosed)
}
