package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskpilot/config"
	"taskpilot/internal/db"
	"taskpilot/internal/mq"
	"taskpilot/internal/mqhandler"
	"taskpilot/internal/outbox"
	"taskpilot/internal/parse"
	redisclient "taskpilot/internal/redis"
	"taskpilot/internal/repository"
	"taskpilot/internal/service"
	"taskpilot/internal/util"
)

func main() {
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	logger.Info("Starting worker service...")

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

	resolver := parse.NewResolver(loc)
	normalizer := parse.NewNormalizer(resolver, loc)
	ingestService := service.NewIngestService(store, deduper, normalizer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// (1) Consumer for ingest requests from collaborator bridges
	ingestHandler := mqhandler.NewIngestRequestHandler(ingestService, logger)
	logger.Info("Initializing ingest consumer", zap.String("queue", "ingest.request.q"))
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "ingest.request.q", mq.RoutingKeyIngestRequest, logger)
	if err != nil {
		logger.Fatal("failed to init ingest consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(ingestHandler.Handle)
	go func() {
		logger.Info("Starting ingest consumer")
		if err := consumer.StartConsuming(); err != nil {
			logger.Fatal("ingest consumer failed", zap.Error(err))
		}
	}()

	// (2) Outbox dispatcher publishing task.changed events
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("failed to init producer", zap.Error(err))
	}
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(store.Outbox, producer, logger)
	go dispatcher.Start(ctx)

	// (3) Retention sweeper
	retention := service.NewRetentionService(store.Messages, store.Tasks, cfg.Retention, logger)
	go retention.Run(ctx)

	logger.Info("Worker is ready to process messages")

	<-ctx.Done()
	logger.Info("Worker shutting down")
}
