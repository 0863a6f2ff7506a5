package inventory

import (
	"errors"
	"time"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementTypeIn represents an inbound movement.
	MovementTypeIn MovementType = "IN"
	// MovementTypeOut represents an outbound movement, e.g. a sale.
	MovementTypeOut MovementType = "OUT"
	// MovementTypeAdjust indicates manual adjustments.
	MovementTypeAdjust MovementType = "ADJUST"
)

// Movement models the header of a stock movement.
type Movement struct {
	ID        int64
	Code      string
	Type      MovementType
	ProductID int64
	Qty       float64
	UnitCost  float64
	RefModule string
	RefID     string
	Note      string
	PostedAt  time.Time
	CreatedBy int64
	CreatedAt time.Time
}

// Balance summarises on-hand stock per product.
type Balance struct {
	ProductID int64
	Qty       float64
	AvgCost   float64
	UpdatedAt time.Time
}

// StockCardEntry describes one stock card line for reports.
type StockCardEntry struct {
	Code        string       `json:"code"`
	Type        MovementType `json:"type"`
	PostedAt    time.Time    `json:"postedAt"`
	QtyIn       float64      `json:"qtyIn"`
	QtyOut      float64      `json:"qtyOut"`
	BalanceQty  float64      `json:"balanceQty"`
	UnitCost    float64      `json:"unitCost"`
	BalanceCost float64      `json:"balanceCost"`
	Note        string       `json:"note"`
}

// InboundInput is used for goods receipt posting.
type InboundInput struct {
	Code      string
	ProductID int64
	Qty       float64
	UnitCost  float64
	Note      string
	ActorID   int64
	RefModule string
	RefID     string
}

// OutboundInput is used for issue posting, typically sale submission.
type OutboundInput struct {
	Code      string
	ProductID int64
	Qty       float64
	Note      string
	ActorID   int64
	RefModule string
	RefID     string
}

// AdjustmentInput describes a manual correction, positive or negative.
type AdjustmentInput struct {
	Code      string
	ProductID int64
	Qty       float64
	UnitCost  float64
	Note      string
	ActorID   int64
	RefModule string
	RefID     string
}

// StockCardFilter filters card entries.
type StockCardFilter struct {
	ProductID int64
	From      time.Time
	To        time.Time
	Limit     int
}

// ErrNegativeStock triggered when a movement would result in negative qty.
var ErrNegativeStock = errors.New("inventory: negative stock not allowed")

// ErrInvalidQuantity indicates an invalid qty.
var ErrInvalidQuantity = errors.New("inventory: quantity must be non zero")

// ErrInvalidUnitCost indicates an invalid cost value.
var ErrInvalidUnitCost = errors.New("inventory: unit cost must be >= 0")

// ErrBalanceNotFound indicates there is no balance row yet.
var ErrBalanceNotFound = errors.New("inventory: balance not found")
