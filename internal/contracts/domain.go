// Package contracts tracks installment agreements created at sale submission.
package contracts

import (
	"encoding/json"
	"errors"
	"time"
)

// Status enumerates contract lifecycle states.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusDefaulted Status = "DEFAULTED"
	StatusCancelled Status = "CANCELLED"
)

// Contract is one installment agreement.
type Contract struct {
	ID             int64           `json:"id"`
	SaleID         int64           `json:"saleId"`
	CustomerID     int64           `json:"customerId"`
	ProductID      int64           `json:"productId"`
	DurationMonths int             `json:"durationMonths"`
	StartingPrice  float64         `json:"startingPrice"`
	MonthlyAmount  float64         `json:"monthlyAmount"`
	StartedAt      time.Time       `json:"startedAt"`
	ExpectedEnd    time.Time       `json:"expectedEnd"`
	Status         Status          `json:"status"`
	Guarantor      json.RawMessage `json:"guarantorDetails,omitempty"`
	NextOfKin      json.RawMessage `json:"nextOfKinDetails,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CreateInput carries fields for a new contract.
type CreateInput struct {
	SaleID         int64
	CustomerID     int64
	ProductID      int64
	DurationMonths int
	StartingPrice  float64
	MonthlyAmount  float64
	Guarantor      json.RawMessage
	NextOfKin      json.RawMessage
}

var (
	// ErrNotFound indicates a missing contract.
	ErrNotFound = errors.New("contracts: not found")
	// ErrBadTransition indicates a disallowed status change.
	ErrBadTransition = errors.New("contracts: invalid status transition")
	// ErrInvalidTerms indicates unusable installment terms.
	ErrInvalidTerms = errors.New("contracts: invalid terms")
)

// allowedTransitions maps each status to the states it may move to.
// Terminal states have no exits.
var allowedTransitions = map[Status][]Status{
	StatusActive:    {StatusCompleted, StatusDefaulted, StatusCancelled},
	StatusDefaulted: {StatusActive, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
