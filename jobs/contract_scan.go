package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/suncore-erp/suncore/internal/contracts"
)

// ContractOverdueScanJob flags active contracts past their expected end.
type ContractOverdueScanJob struct {
	Contracts *contracts.Service
	Logger    *slog.Logger
}

// NewContractOverdueScanJob wires dependencies for the scan handler.
func NewContractOverdueScanJob(contractsSvc *contracts.Service, logger *slog.Logger) *ContractOverdueScanJob {
	return &ContractOverdueScanJob{Contracts: contractsSvc, Logger: logger}
}

// Handle processes overdue scan tasks.
func (j *ContractOverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Contracts == nil {
		return errors.New("contract scan: handler not configured")
	}
	flagged, err := j.Contracts.ScanOverdue(ctx)
	if err != nil {
		j.logger().Error("scan overdue contracts", slog.Any("error", err))
		return err
	}
	j.logger().Info("scanned overdue contracts", slog.Int("flagged", flagged))
	return nil
}

func (j *ContractOverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeContractOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskTypeContractOverdueScan))
}
