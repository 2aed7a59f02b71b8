package realtime

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	a := hub.Subscribe()
	b := hub.Subscribe()
	assert.Equal(t, 2, hub.Subscribers())

	hub.Publish(Event{Type: EventRunStarted, RunID: "r1", Total: 3})

	for _, ch := range []chan Event{a, b} {
		ev := <-ch
		assert.Equal(t, EventRunStarted, ev.Type)
		assert.Equal(t, 3, ev.Total)
	}

	hub.Unsubscribe(a)
	assert.Equal(t, 1, hub.Subscribers())
	_, ok := <-a
	assert.False(t, ok, "unsubscribed channel is closed")

	// double unsubscribe is a no-op
	hub.Unsubscribe(a)
}

func TestHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ch := hub.Subscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(Event{Type: EventCompanyDone, Done: i + 1})
	}

	assert.Len(t, ch, subscriberBuffer)
	assert.Equal(t, uint64(5), hub.Dropped())

	first := <-ch
	assert.Equal(t, 1, first.Done, "oldest events are kept")
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ch := hub.Subscribe()

	hub.Close()
	_, ok := <-ch
	assert.False(t, ok)

	// publish and unsubscribe after close must not panic
	hub.Publish(Event{Type: EventRunFinished})
	hub.Unsubscribe(ch)
	hub.Close()

	late := hub.Subscribe()
	_, ok = <-late
	require.False(t, ok, "subscribing to a closed hub yields a closed channel")
}
