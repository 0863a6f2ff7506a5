package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/suncore-erp/suncore/internal/devices"
)

// TokenExpirySweepJob revokes PAYG tokens whose validity window has passed.
type TokenExpirySweepJob struct {
	Devices *devices.Service
	Logger  *slog.Logger
}

// NewTokenExpirySweepJob wires dependencies for the sweep handler.
func NewTokenExpirySweepJob(devicesSvc *devices.Service, logger *slog.Logger) *TokenExpirySweepJob {
	return &TokenExpirySweepJob{Devices: devicesSvc, Logger: logger}
}

// Handle processes token sweep tasks.
func (j *TokenExpirySweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Devices == nil {
		return errors.New("token sweep: handler not configured")
	}
	var payload TokenExpirySweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	grace := time.Duration(payload.GraceMinutes) * time.Minute

	n, err := j.Devices.SweepExpired(ctx, grace)
	if err != nil {
		j.logger().Error("sweep expired tokens", slog.Any("error", err))
		return err
	}
	j.logger().Info("swept expired tokens", slog.Int64("revoked", n))
	return nil
}

func (j *TokenExpirySweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeTokenExpirySweep))
	}
	return slog.Default().With(slog.String("job", TaskTypeTokenExpirySweep))
}
