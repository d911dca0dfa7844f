package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *AuthHandler,
	ingestHandler *IngestHandler,
	ocrHandler *OCRHandler,
	taskHandler *TaskHandler,
	messageHandler *MessageHandler,
	watchHandler *WatchHandler,
	adminHandler *AdminHandler,
	jwtSecret string,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/ingest", ingestHandler.Ingest)
		auth.POST("/ocr/preview", ocrHandler.Preview)
		auth.POST("/ocr/confirm", ocrHandler.Confirm)
		auth.GET("/tasks", taskHandler.List)
		auth.GET("/tasks/watch", watchHandler.Watch)
		auth.GET("/tasks/:id", taskHandler.Get)
		auth.POST("/tasks/:id/complete", taskHandler.Complete)
		auth.GET("/messages", messageHandler.Recent)
		auth.GET("/admin/outbox/failed", adminHandler.FailedEvents)
		auth.POST("/admin/outbox/replay", adminHandler.ReplayEvent)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
