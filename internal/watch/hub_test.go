package watch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskpilot/internal/mq"
)

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	h := NewHub(zap.NewNop())
	ch1, cancel1 := h.Subscribe()
	defer cancel1()
	ch2, cancel2 := h.Subscribe()
	defer cancel2()

	evt := mq.TaskChangedPayload{TaskID: 42, Action: mq.TaskActionCreated, Bucket: "WEEK", Status: "PENDING"}
	h.Broadcast(evt)

	select {
	case got := <-ch1:
		assert.Equal(t, evt, got)
	case <-time.After(time.Second):
		t.Fatal("first subscriber did not receive event")
	}
	select {
	case got := <-ch2:
		assert.Equal(t, evt, got)
	case <-time.After(time.Second):
		t.Fatal("second subscriber did not receive event")
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	t.Parallel()

	h := NewHub(zap.NewNop())
	ch, cancel := h.Subscribe()
	cancel()

	// Channel is closed; broadcasts after cancel must not panic.
	h.Broadcast(mq.TaskChangedPayload{TaskID: 1, Action: mq.TaskActionCompleted})

	_, open := <-ch
	assert.False(t, open)
}

func TestHubCancelIsIdempotent(t *testing.T) {
	t.Parallel()

	h := NewHub(zap.NewNop())
	_, cancel := h.Subscribe()
	cancel()
	cancel()
}

func TestHubHandleTaskChanged(t *testing.T) {
	t.Parallel()

	h := NewHub(zap.NewNop())
	ch, cancel := h.Subscribe()
	defer cancel()

	raw, err := json.Marshal(mq.TaskChangedPayload{TaskID: 7, Action: mq.TaskActionCompleted, Bucket: "TODAY", Status: "COMPLETED"})
	require.NoError(t, err)

	require.NoError(t, h.HandleTaskChanged(context.Background(), raw))

	select {
	case got := <-ch:
		assert.Equal(t, int64(7), got.TaskID)
		assert.Equal(t, mq.TaskActionCompleted, got.Action)
	case <-time.After(time.Second):
		t.Fatal("handler did not broadcast")
	}
}

func TestHubHandleTaskChangedRejectsBadJSON(t *testing.T) {
	t.Parallel()

	h := NewHub(zap.NewNop())
	err := h.HandleTaskChanged(context.Background(), json.RawMessage(`{bad`))
	require.Error(t, err)
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	h := NewHub(zap.NewNop())
	_, cancel := h.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			h.Broadcast(mq.TaskChangedPayload{TaskID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on slow subscriber")
	}
}

func TestHubEvictsSlowSubscriber(t *testing.T) {
	t.Parallel()

	h := NewHub(zap.NewNop())
	slow, cancelSlow := h.Subscribe()
	defer cancelSlow()

	// Overflow the subscriber without draining it. Its channel must
	// close so the client reconnects rather than miss an event and
	// stay stale.
	for i := 0; i <= subscriberBuffer; i++ {
		h.Broadcast(mq.TaskChangedPayload{TaskID: int64(i)})
	}

	for i := 0; i < subscriberBuffer; i++ {
		<-slow
	}
	_, open := <-slow
	assert.False(t, open, "overflowed subscriber should be evicted")

	// A reconnecting subscriber receives again.
	fresh, cancelFresh := h.Subscribe()
	defer cancelFresh()
	h.Broadcast(mq.TaskChangedPayload{TaskID: 99})
	select {
	case evt := <-fresh:
		assert.Equal(t, int64(99), evt.TaskID)
	case <-time.After(time.Second):
		t.Fatal("fresh subscriber did not receive event")
	}
}
