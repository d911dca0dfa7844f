package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskpilot/internal/service"
)

type OCRHandler struct {
	ocrService *service.OCRService
	logger     *zap.Logger
}

func NewOCRHandler(ocrService *service.OCRService, logger *zap.Logger) *OCRHandler {
	return &OCRHandler{ocrService: ocrService, logger: logger}
}

// Preview handles POST /ocr/preview
func (h *OCRHandler) Preview(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	draft, err := h.ocrService.Preview(req.Text, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is empty"})
		return
	}

	c.JSON(http.StatusOK, draft)
}

// Confirm handles POST /ocr/confirm
func (h *OCRHandler) Confirm(c *gin.Context) {
	var req service.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.ocrService.Confirm(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyOCRText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "text is empty"})
			return
		}
		h.logger.Error("OCR confirm failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm"})
		return
	}

	if !res.Created {
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(http.StatusCreated, res)
}
