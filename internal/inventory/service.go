package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/suncore-erp/suncore/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetStockCard(ctx context.Context, filter StockCardFilter) ([]StockCardEntry, error)
	GetBalance(ctx context.Context, productID int64) (Balance, error)
	ListBalances(ctx context.Context) ([]Balance, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates inventory operations.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	allowNeg    bool
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	AllowNegativeStock bool
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore, cfg ServiceConfig) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, allowNeg: cfg.AllowNegativeStock}
}

// PostInbound posts an inbound movement, e.g. a delivery from a supplier.
func (s *Service) PostInbound(ctx context.Context, input InboundInput) (StockCardEntry, error) {
	if input.ProductID == 0 {
		return StockCardEntry{}, errors.New("inventory: product required")
	}
	if input.Qty <= 0 {
		return StockCardEntry{}, ErrInvalidQuantity
	}
	if input.UnitCost < 0 {
		return StockCardEntry{}, ErrInvalidUnitCost
	}
	return s.postMovement(ctx, movementParams{
		Code:      input.Code,
		ProductID: input.ProductID,
		QtyChange: input.Qty,
		UnitCost:  input.UnitCost,
		Type:      MovementTypeIn,
		Note:      input.Note,
		ActorID:   input.ActorID,
		RefModule: input.RefModule,
		RefID:     input.RefID,
	})
}

// PostOutbound posts an outbound movement. Sale submission calls this for
// INVENTORY category sale items.
func (s *Service) PostOutbound(ctx context.Context, input OutboundInput) (StockCardEntry, error) {
	if input.ProductID == 0 {
		return StockCardEntry{}, errors.New("inventory: product required")
	}
	if input.Qty <= 0 {
		return StockCardEntry{}, ErrInvalidQuantity
	}
	return s.postMovement(ctx, movementParams{
		Code:      input.Code,
		ProductID: input.ProductID,
		QtyChange: -input.Qty,
		Type:      MovementTypeOut,
		Note:      input.Note,
		ActorID:   input.ActorID,
		RefModule: input.RefModule,
		RefID:     input.RefID,
	})
}

// PostAdjustment posts a manual correction, positive or negative.
func (s *Service) PostAdjustment(ctx context.Context, input AdjustmentInput) (StockCardEntry, error) {
	if input.ProductID == 0 {
		return StockCardEntry{}, errors.New("inventory: product required")
	}
	if math.Abs(input.Qty) < 1e-9 {
		return StockCardEntry{}, ErrInvalidQuantity
	}
	if input.Qty > 0 && input.UnitCost < 0 {
		return StockCardEntry{}, ErrInvalidUnitCost
	}
	return s.postMovement(ctx, movementParams{
		Code:      input.Code,
		ProductID: input.ProductID,
		QtyChange: input.Qty,
		UnitCost:  input.UnitCost,
		Type:      MovementTypeAdjust,
		Note:      input.Note,
		ActorID:   input.ActorID,
		RefModule: input.RefModule,
		RefID:     input.RefID,
	})
}

// GetStockCard lists stock card entries for one product.
func (s *Service) GetStockCard(ctx context.Context, filter StockCardFilter) ([]StockCardEntry, error) {
	if filter.ProductID == 0 {
		return nil, errors.New("inventory: product required")
	}
	return s.repo.GetStockCard(ctx, filter)
}

// GetBalance returns current on-hand qty and average cost for a product.
func (s *Service) GetBalance(ctx context.Context, productID int64) (Balance, error) {
	return s.repo.GetBalance(ctx, productID)
}

// ListBalances returns all product balances.
func (s *Service) ListBalances(ctx context.Context) ([]Balance, error) {
	return s.repo.ListBalances(ctx)
}

type movementParams struct {
	Code      string
	ProductID int64
	QtyChange float64
	UnitCost  float64
	Type      MovementType
	Note      string
	ActorID   int64
	RefModule string
	RefID     string
}

func (s *Service) postMovement(ctx context.Context, params movementParams) (StockCardEntry, error) {
	if params.QtyChange == 0 {
		return StockCardEntry{}, ErrInvalidQuantity
	}
	now := time.Now().UTC()
	code := params.Code
	if code == "" {
		code = fmt.Sprintf("MV-%s", uuid.NewString()[:8])
	}

	key := fmt.Sprintf("%s:%s:%d", params.Type, code, params.ProductID)
	insertedKey := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "inventory"); err != nil {
			return StockCardEntry{}, err
		}
		insertedKey = true
	}

	var card StockCardEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		balance, err := tx.GetBalanceForUpdate(ctx, params.ProductID)
		if err != nil && !errors.Is(err, ErrBalanceNotFound) {
			return err
		}
		if errors.Is(err, ErrBalanceNotFound) {
			balance = Balance{ProductID: params.ProductID}
		}

		qtyChange := params.QtyChange
		newQty := balance.Qty + qtyChange
		if !s.allowNeg && newQty < -0.0001 {
			return ErrNegativeStock
		}

		var unitCost, newAvg float64
		if qtyChange > 0 {
			unitCost = params.UnitCost
			totalCost := balance.Qty*balance.AvgCost + qtyChange*unitCost
			if newQty != 0 {
				newAvg = totalCost / newQty
			}
		} else {
			unitCost = balance.AvgCost
			if math.Abs(newQty) < 0.0001 {
				newQty = 0
			}
			if newQty <= 0 {
				newAvg = 0
			} else {
				newAvg = balance.AvgCost
			}
		}

		movementID, err := tx.InsertMovement(ctx, Movement{
			Code:      code,
			Type:      params.Type,
			ProductID: params.ProductID,
			Qty:       qtyChange,
			UnitCost:  unitCost,
			RefModule: params.RefModule,
			RefID:     params.RefID,
			Note:      params.Note,
			PostedAt:  now,
			CreatedBy: params.ActorID,
		})
		if err != nil {
			return err
		}

		balance.Qty = newQty
		balance.AvgCost = newAvg
		if err := tx.UpsertBalance(ctx, balance); err != nil {
			return err
		}

		card = StockCardEntry{
			Code:        code,
			Type:        params.Type,
			PostedAt:    now,
			QtyIn:       math.Max(qtyChange, 0),
			QtyOut:      math.Max(-qtyChange, 0),
			BalanceQty:  newQty,
			UnitCost:    unitCost,
			BalanceCost: newAvg,
			Note:        params.Note,
		}
		return tx.InsertCardEntry(ctx, card, params.ProductID, movementID)
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return StockCardEntry{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  params.ActorID,
			Module:   "inventory",
			Action:   fmt.Sprintf("inventory:%s", params.Type),
			EntityID: code,
			Detail: map[string]any{
				"product_id": params.ProductID,
				"qty":        params.QtyChange,
				"note":       params.Note,
			},
		})
	}
	return card, nil
}
