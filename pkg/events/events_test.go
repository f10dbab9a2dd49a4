package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroker_PublishDeliversToSubscriber(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.Publish(&Event{Type: EventCoupleBroken, Message: "couple 1:2 broken"})

	select {
	case ev := <-sub:
		require.Equal(t, EventCoupleBroken, ev.Type)
		require.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBroker_FanOutToMultipleSubscribers(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	defer b.Unsubscribe(sub1)
	defer b.Unsubscribe(sub2)

	b.Publish(&Event{Type: EventGroupStatusChanged})

	for _, sub := range []Subscriber{sub1, sub2} {
		select {
		case ev := <-sub:
			require.Equal(t, EventGroupStatusChanged, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("event not delivered to all subscribers")
		}
	}
}

func TestBroker_SubscriberCount(t *testing.T) {
	b := NewBroker()
	require.Equal(t, 0, b.SubscriberCount())

	sub := b.Subscribe()
	require.Equal(t, 1, b.SubscriberCount())

	b.Unsubscribe(sub)
	require.Equal(t, 0, b.SubscriberCount())
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()
	b.Unsubscribe(sub)

	_, ok := <-sub
	require.False(t, ok)
}
