package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/suncore-erp/suncore/internal/catalog"
	"github.com/suncore-erp/suncore/internal/contracts"
	"github.com/suncore-erp/suncore/internal/devices"
	"github.com/suncore-erp/suncore/internal/inventory"
	"github.com/suncore-erp/suncore/internal/sales/draft"
	"github.com/suncore-erp/suncore/internal/shared"
)

// CatalogPort resolves products referenced by draft line items.
type CatalogPort interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

// DevicesPort checks device availability before submission.
type DevicesPort interface {
	EnsureAvailable(ctx context.Context, serials []string) error
}

// InventoryPort posts outbound stock movements for INVENTORY sales.
type InventoryPort interface {
	PostOutbound(ctx context.Context, input inventory.OutboundInput) (inventory.StockCardEntry, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates the sale submission flow.
type Service struct {
	manager   *DraftManager
	repo      Repository
	catalog   CatalogPort
	devices   DevicesPort
	inventory InventoryPort
	audit     AuditPort
	logger    *slog.Logger
}

// NewService builds Service.
func NewService(manager *DraftManager, repo Repository, cat CatalogPort, dev DevicesPort, inv InventoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{manager: manager, repo: repo, catalog: cat, devices: dev, inventory: inv, audit: audit, logger: logger}
}

// Manager exposes the draft manager for the draft editing endpoints.
func (s *Service) Manager() *DraftManager {
	return s.manager
}

// Get returns one sale.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

// List returns sales matching the filters.
func (s *Service) List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	return s.repo.List(ctx, req)
}

// Cancel drops the session's draft without persisting anything.
func (s *Service) Cancel(sessionID string) {
	s.manager.Drop(sessionID)
}

// Submit assembles the session's draft and persists the sale. Validation
// failures come back as structured errors and leave the draft untouched; the
// draft is dropped only after the whole flow succeeds.
func (s *Service) Submit(ctx context.Context, sessionID string, actorID int64) (*Sale, []draft.ValidationError, error) {
	store, ok := s.manager.Peek(sessionID)
	if !ok {
		return nil, nil, ErrEmptyDraft
	}
	snap := store.Snapshot()

	payload, verrs := draft.BuildPayload(snap)
	if verrs != nil {
		return nil, verrs, nil
	}

	var serials []string
	for _, item := range payload.SaleItems {
		serials = append(serials, item.Devices...)
	}
	if err := s.devices.EnsureAvailable(ctx, serials); err != nil {
		if errors.Is(err, devices.ErrNotFound) || errors.Is(err, devices.ErrNotAvailable) {
			return nil, []draft.ValidationError{{
				Path:    []string{"saleItems", "devices"},
				Message: err.Error(),
			}}, nil
		}
		return nil, nil, err
	}

	rec, verrs, err := s.buildRecord(ctx, snap, payload, actorID)
	if err != nil || verrs != nil {
		return nil, verrs, err
	}

	sale, err := s.repo.CreateSale(ctx, *rec)
	if err != nil {
		if errors.Is(err, devices.ErrNotAvailable) {
			return nil, []draft.ValidationError{{
				Path:    []string{"saleItems", "devices"},
				Message: "one or more devices are no longer available",
			}}, nil
		}
		return nil, nil, fmt.Errorf("persist sale: %w", err)
	}

	if payload.Category == draft.CategoryInventory {
		for _, item := range sale.Items {
			_, err := s.inventory.PostOutbound(ctx, inventory.OutboundInput{
				Code:      fmt.Sprintf("%s-P%d", sale.Code, item.ProductID),
				ProductID: item.ProductID,
				Qty:       float64(item.Quantity),
				Note:      fmt.Sprintf("sale %s", sale.Code),
				ActorID:   actorID,
				RefModule: "sales",
				RefID:     sale.Code,
			})
			if err != nil {
				// Sale is committed; stock follows up manually. Keep the draft
				// so the operator sees the failure and can reconcile.
				return nil, nil, fmt.Errorf("post outbound for %s: %w", sale.Code, err)
			}
		}
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Module:   "sales",
			Action:   "sales:create",
			EntityID: sale.Code,
			Detail: map[string]any{
				"customer_id": sale.CustomerID,
				"total":       sale.Total,
				"items":       len(sale.Items),
			},
		})
	}

	s.manager.Drop(sessionID)
	return sale, nil, nil
}

// buildRecord prices the payload and derives installment contracts.
func (s *Service) buildRecord(ctx context.Context, snap draft.Draft, payload *draft.SalePayload, actorID int64) (*SaleRecord, []draft.ValidationError, error) {
	rec := SaleRecord{
		Sale: Sale{
			Category:   payload.Category,
			CustomerID: payload.CustomerID,
			CreatedBy:  actorID,
		},
	}

	nokJSON, err := marshalOptional(payload.NextOfKinDetails)
	if err != nil {
		return nil, nil, err
	}

	var total float64
	for _, item := range payload.SaleItems {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, []draft.ValidationError{{
					Path:    []string{"saleItems", fmt.Sprintf("product:%d", item.ProductID)},
					Message: "unknown product",
				}}, nil
			}
			return nil, nil, err
		}

		lineTotal := product.UnitPrice*float64(item.Quantity) - item.Discount
		for _, amount := range item.MiscellaneousPrices {
			lineTotal += amount
		}
		total += lineTotal

		rec.Sale.Items = append(rec.Sale.Items, SaleItem{
			ProductID:                item.ProductID,
			Quantity:                 item.Quantity,
			PaymentMode:              item.PaymentMode,
			UnitPrice:                product.UnitPrice,
			Discount:                 item.Discount,
			InstallmentDuration:      item.InstallmentDuration,
			InstallmentStartingPrice: item.InstallmentStartingPrice,
			Devices:                  item.Devices,
			MiscellaneousPrices:      item.MiscellaneousPrices,
		})

		if item.PaymentMode == draft.PaymentModeInstallment {
			guarantorJSON, err := marshalOptional(itemGuarantor(snap, item.ProductID))
			if err != nil {
				return nil, nil, err
			}
			monthly := (lineTotal - item.InstallmentStartingPrice) / float64(item.InstallmentDuration)
			contract, err := contracts.BuildContract(contracts.CreateInput{
				CustomerID:     payload.CustomerID,
				ProductID:      item.ProductID,
				DurationMonths: item.InstallmentDuration,
				StartingPrice:  item.InstallmentStartingPrice,
				MonthlyAmount:  monthly,
				Guarantor:      guarantorJSON,
				NextOfKin:      nokJSON,
			}, nowUTC())
			if err != nil {
				return nil, []draft.ValidationError{{
					Path:    []string{"saleItems", fmt.Sprintf("product:%d", item.ProductID)},
					Message: err.Error(),
				}}, nil
			}
			rec.Contracts = append(rec.Contracts, contract)
		}
	}

	rec.Sale.Total = total
	return &rec, nil, nil
}

func itemGuarantor(snap draft.Draft, productID int64) *draft.GuarantorDetails {
	for _, it := range snap.Items {
		if it.ProductID == productID {
			return it.Guarantor
		}
	}
	return nil
}

func marshalOptional[T any](v *T) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
