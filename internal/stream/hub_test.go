package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matchlobby/voicebridge/internal/domain"
	"github.com/matchlobby/voicebridge/internal/reconcile"
)

func TestPublishWithoutSubscribers(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Publish(context.Background(), reconcile.Update{RoomID: "room-1"}))
}

func TestPublishQueuesFramePerSubscriber(t *testing.T) {
	h := NewHub()
	s := &subscriber{send: make(chan []byte, 2)}
	h.add(s)

	u := reconcile.Update{
		RoomID: "room-1",
		Roster: domain.Roster{{UserID: "1", Name: "alice"}},
	}
	require.NoError(t, h.Publish(context.Background(), u))

	select {
	case frame := <-s.send:
		require.Contains(t, string(frame), `"roomId":"room-1"`)
	default:
		t.Fatal("expected a queued frame")
	}
}

func TestSlowSubscriberDropsFramesWithoutBlocking(t *testing.T) {
	h := NewHub()
	s := &subscriber{send: make(chan []byte, 1)}
	h.add(s)

	// Fill the buffer, then publish twice more; Publish must return
	// immediately every time.
	require.NoError(t, h.Publish(context.Background(), reconcile.Update{RoomID: "a"}))
	require.NoError(t, h.Publish(context.Background(), reconcile.Update{RoomID: "b"}))
	require.NoError(t, h.Publish(context.Background(), reconcile.Update{RoomID: "c"}))

	require.Len(t, s.send, 1)
	frame := <-s.send
	require.Contains(t, string(frame), `"roomId":"a"`)
}

func TestClosedSubscriberIsSkipped(t *testing.T) {
	h := NewHub()
	s := &subscriber{send: make(chan []byte, 1)}
	h.add(s)
	h.remove(s)

	require.NoError(t, h.Publish(context.Background(), reconcile.Update{RoomID: "a"}))
	require.Zero(t, h.subscriberCount())
}
