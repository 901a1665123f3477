package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_DeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var got []EventType
	d.Subscribe(EventAttendanceRegistered, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventAttendanceSignedOut, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventAttendanceRegistered}))
	assert.Equal(t, []EventType{EventAttendanceRegistered}, got)
}

func TestDispatcher_IsolatesFailingHandlers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	calls := 0
	d.Subscribe(EventAttendanceRegistered, func(context.Context, Event) error {
		calls++
		return errors.New("payroll backend down")
	})
	d.Subscribe(EventAttendanceRegistered, func(context.Context, Event) error {
		calls++
		panic("boom")
	})
	d.Subscribe(EventAttendanceRegistered, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventAttendanceRegistered})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}
