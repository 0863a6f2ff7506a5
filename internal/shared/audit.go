package shared

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog captures a single recorded action.
type AuditLog struct {
	ActorID  int64
	Module   string
	Action   string
	EntityID string
	Detail   map[string]any
}

// AuditLogger persists audit records.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger constructs the logger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record writes one audit row. Best-effort detail serialization: a payload
// that cannot marshal is stored as null rather than failing the action.
func (a *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if a == nil || a.pool == nil {
		return nil
	}
	var detail []byte
	if log.Detail != nil {
		detail, _ = json.Marshal(log.Detail)
	}
	_, err := a.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, module, action, entity_id, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		log.ActorID, log.Module, log.Action, log.EntityID, detail, time.Now())
	return err
}
