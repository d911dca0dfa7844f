package main

import (
	"time"

	"go.uber.org/zap"

	"taskpilot/config"
	"taskpilot/internal/api"
	"taskpilot/internal/db"
	"taskpilot/internal/mq"
	"taskpilot/internal/parse"
	redisclient "taskpilot/internal/redis"
	"taskpilot/internal/repository"
	"taskpilot/internal/service"
	"taskpilot/internal/util"
	"taskpilot/internal/watch"
)

func main() {
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	loc, err := time.LoadLocation(cfg.Parse.Timezone)
	if err != nil {
		logger.Fatal("Invalid parse timezone", zap.String("timezone", cfg.Parse.Timezone), zap.Error(err))
	}

	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	deduper := util.NewDeduper(rdb, time.Duration(cfg.Retention.DedupTTLHours)*time.Hour)

	store := repository.NewStore(dbConn, logger)
	userRepo := repository.NewUserRepository(dbConn)

	resolver := parse.NewResolver(loc)
	normalizer := parse.NewNormalizer(resolver, loc)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	ingestService := service.NewIngestService(store, deduper, normalizer, logger)
	ocrService := service.NewOCRService(normalizer, ingestService, logger)
	taskService := service.NewTaskService(store.Tasks, store.Links, store, logger)

	// Consumer for task.changed events feeding the live view.
	hub := watch.NewHub(logger)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "task.changed.watch.q", mq.RoutingKeyTaskChanged, logger)
	if err != nil {
		logger.Fatal("failed to init watch consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(hub.HandleTaskChanged)
	go func() {
		if err := consumer.StartConsuming(); err != nil {
			logger.Fatal("watch consumer failed", zap.Error(err))
		}
	}()

	authHandler := api.NewAuthHandler(authService)
	ingestHandler := api.NewIngestHandler(ingestService, logger)
	ocrHandler := api.NewOCRHandler(ocrService, logger)
	taskHandler := api.NewTaskHandler(taskService, logger)
	messageHandler := api.NewMessageHandler(store.Messages, logger)
	watchHandler := api.NewWatchHandler(hub, logger)
	adminHandler := api.NewAdminHandler(store.Outbox, logger)

	router := api.NewRouter(
		authHandler,
		ingestHandler,
		ocrHandler,
		taskHandler,
		messageHandler,
		watchHandler,
		adminHandler,
		cfg.JWT.Secret,
		dbConn,
	)

	logger.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
