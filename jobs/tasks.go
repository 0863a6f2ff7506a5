package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeTokenExpirySweep revokes device access tokens whose validity
	// window has passed.
	TaskTypeTokenExpirySweep = "devices:token_expiry_sweep"
	// TaskTypeContractOverdueScan flags active installment contracts that
	// ran past their expected end date.
	TaskTypeContractOverdueScan = "contracts:overdue_scan"
	// TaskTypeStatsWarmup recomputes the dashboard badge counters so
	// interactive requests hit a warm cache.
	TaskTypeStatsWarmup = "stats:warmup"
)

// TokenExpirySweepPayload carries parameters for the token sweep.
type TokenExpirySweepPayload struct {
	// GraceMinutes keeps tokens alive this long past their window.
	GraceMinutes int `json:"graceMinutes"`
}

// NewTokenExpirySweepTask constructs the sweep task.
func NewTokenExpirySweepTask(payload TokenExpirySweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTokenExpirySweep, data), nil
}

// NewContractOverdueScanTask constructs the overdue scan task.
func NewContractOverdueScanTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeContractOverdueScan, nil), nil
}

// NewStatsWarmupTask constructs the badge warmup task.
func NewStatsWarmupTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeStatsWarmup, nil), nil
}
