package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskpilot/config"
)

type messagePruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type taskPruner interface {
	PruneCompleted(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionService ages out raw messages and completed tasks on a
// fixed schedule. Open tasks are never pruned by age.
type RetentionService struct {
	messages messagePruner
	tasks    taskPruner
	cfg      config.RetentionConfig
	logger   *zap.Logger
}

func NewRetentionService(messages messagePruner, tasks taskPruner, cfg config.RetentionConfig, logger *zap.Logger) *RetentionService {
	return &RetentionService{messages: messages, tasks: tasks, cfg: cfg, logger: logger}
}

// Sweep runs one retention pass and returns how many rows were removed.
func (s *RetentionService) Sweep(ctx context.Context) (messages, tasks int64, err error) {
	now := time.Now()

	messages, err = s.messages.PruneOlderThan(ctx, now.AddDate(0, 0, -s.cfg.MessageDays))
	if err != nil {
		return 0, 0, err
	}

	tasks, err = s.tasks.PruneCompleted(ctx, now.AddDate(0, 0, -s.cfg.TaskDays))
	if err != nil {
		return messages, 0, err
	}

	if messages > 0 || tasks > 0 {
		s.logger.Info("Retention sweep finished",
			zap.Int64("messages_removed", messages),
			zap.Int64("tasks_removed", tasks),
		)
	}
	return messages, tasks, nil
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *RetentionService) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.SweepMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Retention sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Retention sweeper stopped")
			return
		case <-ticker.C:
			if _, _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("Retention sweep failed", zap.Error(err))
			}
		}
	}
}
