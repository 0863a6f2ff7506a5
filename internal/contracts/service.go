package contracts

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/suncore-erp/suncore/internal/shared"
)

// Store abstracts persistence for the service.
type Store interface {
	Get(ctx context.Context, id int64) (*Contract, error)
	List(ctx context.Context, status *Status, limit, offset int) ([]Contract, error)
	InsertTx(ctx context.Context, tx pgx.Tx, c Contract) (int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
	ListOverdue(ctx context.Context, asOf time.Time) ([]Contract, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates contract operations.
type Service struct {
	store  Store
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(store Store, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{store: store, audit: audit, logger: logger}
}

// BuildContract assembles a new ACTIVE contract from sale terms. The caller
// inserts it through CreateTx inside the sale transaction.
func BuildContract(in CreateInput, now time.Time) (Contract, error) {
	if in.DurationMonths <= 0 || in.StartingPrice <= 0 || in.MonthlyAmount <= 0 {
		return Contract{}, ErrInvalidTerms
	}
	return Contract{
		SaleID:         in.SaleID,
		CustomerID:     in.CustomerID,
		ProductID:      in.ProductID,
		DurationMonths: in.DurationMonths,
		StartingPrice:  in.StartingPrice,
		MonthlyAmount:  in.MonthlyAmount,
		StartedAt:      now,
		ExpectedEnd:    now.AddDate(0, in.DurationMonths, 0),
		Status:         StatusActive,
		Guarantor:      in.Guarantor,
		NextOfKin:      in.NextOfKin,
	}, nil
}

// CreateTx inserts a contract within an existing sale transaction.
func (s *Service) CreateTx(ctx context.Context, tx pgx.Tx, in CreateInput) (int64, error) {
	c, err := BuildContract(in, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return s.store.InsertTx(ctx, tx, c)
}

// Get returns one contract.
func (s *Service) Get(ctx context.Context, id int64) (*Contract, error) {
	return s.store.Get(ctx, id)
}

// List returns contracts filtered by status.
func (s *Service) List(ctx context.Context, status *Status, limit, offset int) ([]Contract, error) {
	return s.store.List(ctx, status, limit, offset)
}

// Transition moves a contract to a new status when the transition is allowed.
func (s *Service) Transition(ctx context.Context, id int64, to Status, actorID int64) (*Contract, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(c.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, c.Status, to)
	}
	if err := s.store.UpdateStatus(ctx, id, c.Status, to); err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Module:   "contracts",
			Action:   "contracts:transition",
			EntityID: strconv.FormatInt(id, 10),
			Detail:   map[string]any{"from": c.Status, "to": to},
		})
	}
	return s.store.Get(ctx, id)
}

// ScanOverdue flags ACTIVE contracts past their expected end as DEFAULTED and
// returns how many changed. The daily overdue job calls this.
func (s *Service) ScanOverdue(ctx context.Context) (int, error) {
	overdue, err := s.store.ListOverdue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	flagged := 0
	for _, c := range overdue {
		if err := s.store.UpdateStatus(ctx, c.ID, StatusActive, StatusDefaulted); err != nil {
			// Another writer may have moved it already. Log and keep going.
			if s.logger != nil {
				s.logger.Warn("overdue scan skip", slog.Int64("contract_id", c.ID), slog.Any("error", err))
			}
			continue
		}
		flagged++
	}
	return flagged, nil
}
