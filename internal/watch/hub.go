package watch

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"taskpilot/internal/mq"
	"taskpilot/pkg/metrics"
)

const subscriberBuffer = 16

// Hub fans committed task-change events out to live-view subscribers.
// Events arrive from the task.changed queue, which the outbox fills in
// the same transaction as every store write, so a subscriber that stays
// connected observes every committed change.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan mq.TaskChangedPayload]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[chan mq.TaskChangedPayload]struct{}),
		logger: logger,
	}
}

// Subscribe registers a live-view reader. The returned cancel func must
// be called when the reader goes away.
func (h *Hub) Subscribe() (<-chan mq.TaskChangedPayload, func()) {
	ch := make(chan mq.TaskChangedPayload, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	metrics.WatchSubscribers.Inc()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
			metrics.WatchSubscribers.Dec()
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast delivers one event to every subscriber. A subscriber whose
// buffer is full is evicted and its channel closed, which ends the SSE
// stream so the client reconnects and re-syncs instead of staying stale
// on a missed event.
func (h *Hub) Broadcast(evt mq.TaskChangedPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			delete(h.subs, ch)
			close(ch)
			metrics.WatchSubscribers.Dec()
			h.logger.Warn("Evicting slow watch subscriber",
				zap.Int64("task_id", evt.TaskID),
			)
		}
	}
}

// HandleTaskChanged is the mq.MessageHandler feeding the hub.
func (h *Hub) HandleTaskChanged(ctx context.Context, raw json.RawMessage) error {
	var p mq.TaskChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal task changed payload", zap.Error(err))
		return err
	}

	h.Broadcast(p)
	return nil
}
