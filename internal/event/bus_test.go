package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOut(t *testing.T) {
	bus := NewBus()
	a, unsubA := bus.Subscribe()
	defer unsubA()
	b, unsubB := bus.Subscribe()
	defer unsubB()

	bus.Publish(New(TypeUserRegistered, "u1", UserRegistered{UserID: "u1"}))

	for _, ch := range []<-chan Event{a, b} {
		select {
		case e := <-ch:
			assert.Equal(t, TypeUserRegistered, e.Type)
			assert.Equal(t, "u1", e.ActorID)
			assert.NotEmpty(t, e.ID)
			payload, ok := e.Payload.(UserRegistered)
			require.True(t, ok)
			assert.Equal(t, "u1", payload.UserID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := NewBus()
	_, unsub := bus.Subscribe()
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(New(TypeUserRegistered, "", nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked")
	}
}

func TestUnsubscribeAndClose(t *testing.T) {
	bus := NewBus()
	ch, unsub := bus.Subscribe()
	unsub()
	unsub()

	_, open := <-ch
	assert.False(t, open)

	other, _ := bus.Subscribe()
	bus.Close()
	_, open = <-other
	assert.False(t, open)

	late, _ := bus.Subscribe()
	_, open = <-late
	assert.False(t, open)

	bus.Publish(New(TypeUserRegistered, "", nil))
}
