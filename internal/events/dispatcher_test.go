package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcher_PublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var got []EventType
	d.Subscribe(EventUserSignedUp, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventPasswordResetRequested, func(context.Context, Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventUserSignedUp}))
	assert.Equal(t, []EventType{EventUserSignedUp}, got)
}

func TestDispatcher_HandlerErrorIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	calls := 0
	d.Subscribe(EventPasswordResetRequested, func(context.Context, Event) error {
		calls++
		return errors.New("queue down")
	})
	d.Subscribe(EventPasswordResetRequested, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventPasswordResetRequested})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}

func TestDispatcher_PanickingHandlerIsIsolated(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	delivered := false
	d.Subscribe(EventUserSignedUp, func(context.Context, Event) error {
		panic("nil map")
	})
	d.Subscribe(EventUserSignedUp, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	assert.NotPanics(t, func() {
		assert.NoError(t, d.Publish(context.Background(), Event{Type: EventUserSignedUp}))
	})
	assert.True(t, delivered)
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}
