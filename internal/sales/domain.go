// Package sales persists submitted sales and hosts the per-session draft flow.
package sales

import (
	"errors"
	"time"

	"github.com/suncore-erp/suncore/internal/contracts"
	"github.com/suncore-erp/suncore/internal/sales/draft"
)

// Sale is one submitted sale record.
type Sale struct {
	ID           int64          `json:"id"`
	Code         string         `json:"code"`
	Category     draft.Category `json:"category"`
	CustomerID   int64          `json:"customerId"`
	CustomerName string         `json:"customerName,omitempty"`
	Total        float64        `json:"total"`
	CreatedBy    int64          `json:"createdBy"`
	CreatedAt    time.Time      `json:"createdAt"`
	Items        []SaleItem     `json:"items,omitempty"`
}

// SaleItem is one persisted line of a sale.
type SaleItem struct {
	ID                       int64              `json:"id"`
	SaleID                   int64              `json:"saleId"`
	ProductID                int64              `json:"productId"`
	Quantity                 int                `json:"quantity"`
	PaymentMode              draft.PaymentMode  `json:"paymentMode"`
	UnitPrice                float64            `json:"unitPrice"`
	Discount                 float64            `json:"discount"`
	InstallmentDuration      int                `json:"installmentDuration,omitempty"`
	InstallmentStartingPrice float64            `json:"installmentStartingPrice,omitempty"`
	Devices                  []string           `json:"devices"`
	MiscellaneousPrices      map[string]float64 `json:"miscellaneousPrices,omitempty"`
}

// SaleRecord is the atomic unit handed to the repository: the sale, its
// items and any installment contracts commit or roll back together.
type SaleRecord struct {
	Sale      Sale
	Contracts []contracts.Contract
}

// ListSalesRequest filters a sale listing.
type ListSalesRequest struct {
	PaymentMode *draft.PaymentMode
	CustomerID  *int64
	Limit       int
	Offset      int
}

var (
	// ErrNotFound indicates a missing sale.
	ErrNotFound = errors.New("sales: not found")
	// ErrEmptyDraft indicates submission without a draft session.
	ErrEmptyDraft = errors.New("sales: no draft for session")
)
