package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/internal/service"
)

type IngestHandler struct {
	ingestService *service.IngestService
	logger        *zap.Logger
}

func NewIngestHandler(ingestService *service.IngestService, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{ingestService: ingestService, logger: logger}
}

type ingestRequestBody struct {
	AccountType     string     `json:"account_type" binding:"required"`
	SourceMessageID string     `json:"source_message_id" binding:"required"`
	Subject         *string    `json:"subject"`
	Sender          *string    `json:"sender"`
	Body            string     `json:"body"`
	SourcePayload   *string    `json:"source_payload"`
	ReceivedAt      *time.Time `json:"received_at"`
}

// Ingest handles POST /ingest
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req ingestRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	source, err := model.ParseAccountType(req.AccountType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	received := time.Now()
	if req.ReceivedAt != nil {
		received = *req.ReceivedAt
	}

	res, err := h.ingestService.Ingest(c.Request.Context(), service.IngestRequest{
		Source:          source,
		SourceMessageID: req.SourceMessageID,
		Subject:         req.Subject,
		Sender:          req.Sender,
		Body:            req.Body,
		SourcePayload:   req.SourcePayload,
		ReceivedAt:      received,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingContent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subject and body are both empty"})
			return
		}
		h.logger.Error("Ingest failed",
			zap.String("source", source.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest"})
		return
	}

	if !res.Created {
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(http.StatusCreated, res)
}
