package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

// List handles GET /tasks?bucket=TODAY or GET /tasks?status=PENDING.
// Exactly one filter is required; the board queries one column at a
// time.
func (h *TaskHandler) List(c *gin.Context) {
	bucketStr := c.Query("bucket")
	statusStr := c.Query("status")

	if (bucketStr == "") == (statusStr == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of bucket or status is required"})
		return
	}

	var (
		tasks []model.TaskWithMessages
		err   error
	)
	if bucketStr != "" {
		bucket, perr := model.ParseDueBucket(bucketStr)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Error()})
			return
		}
		tasks, err = h.taskService.ListByBucket(c.Request.Context(), bucket)
	} else {
		status, perr := model.ParseTaskStatus(statusStr)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Error()})
			return
		}
		tasks, err = h.taskService.ListByStatus(c.Request.Context(), status)
	}
	if err != nil {
		h.logger.Error("Failed to list tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Get handles GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.logger.Error("Failed to load task", zap.Int64("task_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// Complete handles POST /tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	changed, err := h.taskService.Complete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to complete task", zap.Int64("task_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id": id,
		"changed": changed,
	})
}
