package api

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskpilot/internal/watch"
)

type WatchHandler struct {
	hub    *watch.Hub
	logger *zap.Logger
}

func NewWatchHandler(hub *watch.Hub, logger *zap.Logger) *WatchHandler {
	return &WatchHandler{hub: hub, logger: logger}
}

// Watch handles GET /tasks/watch as a server-sent event stream. Each
// committed task change arrives as one "task" event; the client
// re-queries the board when it sees one.
func (h *WatchHandler) Watch(c *gin.Context) {
	events, cancel := h.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case evt, ok := <-events:
			if !ok {
				return false
			}
			body, err := json.Marshal(evt)
			if err != nil {
				h.logger.Error("Failed to marshal watch event", zap.Error(err))
				return true
			}
			c.SSEvent("task", string(body))
			return true
		}
	})
}
