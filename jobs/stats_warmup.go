package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/suncore-erp/suncore/internal/stats"
)

// StatsWarmupJob recomputes the dashboard badge counters ahead of requests.
type StatsWarmupJob struct {
	Stats  *stats.Service
	Logger *slog.Logger
}

// NewStatsWarmupJob wires dependencies for the warmup handler.
func NewStatsWarmupJob(statsSvc *stats.Service, logger *slog.Logger) *StatsWarmupJob {
	return &StatsWarmupJob{Stats: statsSvc, Logger: logger}
}

// Handle processes warmup tasks.
func (j *StatsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Stats == nil {
		return errors.New("stats warmup: handler not configured")
	}
	badges, err := j.Stats.Refresh(ctx)
	if err != nil {
		j.logger().Error("refresh badges", slog.Any("error", err))
		return err
	}
	j.logger().Info("warmed badge counters",
		slog.Int64("users", badges.Users),
		slog.Int64("customers", badges.Customers),
		slog.Int64("sales", badges.Sales))
	return nil
}

func (j *StatsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeStatsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTypeStatsWarmup))
}
