package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicOnly(t *testing.T) {
	h := NewHub()
	a, cleanupA := h.Subscribe("company-a")
	defer cleanupA()
	b, cleanupB := h.Subscribe("company-b")
	defer cleanupB()

	h.Publish("company-a", Event{Event: "prana.sample", Data: 1})

	select {
	case ev := <-a:
		assert.Equal(t, "company-a", ev.Topic)
		assert.Equal(t, "prana.sample", ev.Event)
	default:
		t.Fatal("expected event for company-a")
	}

	select {
	case ev := <-b:
		t.Fatalf("unexpected event for company-b: %+v", ev)
	default:
	}
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	h := NewHub()
	_, cleanup := h.Subscribe("company-a")
	require.Equal(t, 1, h.SubscriberCount("company-a"))

	cleanup()
	cleanup()

	assert.Equal(t, 0, h.SubscriberCount("company-a"))
}

func TestHub_PublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	h := NewHub()
	_, cleanup := h.Subscribe("company-a")
	defer cleanup()

	for i := 0; i < 100; i++ {
		h.Publish("company-a", Event{Event: "prana.sample", Data: i})
	}
}
