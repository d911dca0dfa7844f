package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/internal/repository"
)

type MessageHandler struct {
	messageRepo *repository.MessageRepository
	logger      *zap.Logger
}

func NewMessageHandler(messageRepo *repository.MessageRepository, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo, logger: logger}
}

// Recent handles GET /messages?account_type=GMAIL&limit=20
func (h *MessageHandler) Recent(c *gin.Context) {
	accountType, err := model.ParseAccountType(c.Query("account_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, perr := strconv.Atoi(limitStr)
		if perr != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		limit = parsed
	}

	messages, err := h.messageRepo.ListRecent(c.Request.Context(), accountType, limit)
	if err != nil {
		h.logger.Error("Failed to list recent messages",
			zap.String("account_type", accountType.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
