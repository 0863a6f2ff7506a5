// Package devices manages the PAYG device registry and unlock tokens.
package devices

import (
	"errors"
	"time"
)

// State enumerates device lifecycle states.
type State string

const (
	// StateAvailable means the device can be selected into a sale draft.
	StateAvailable State = "AVAILABLE"
	// StateAssigned means the device belongs to a submitted sale.
	StateAssigned State = "ASSIGNED"
	// StateLocked means the device is PAYG locked pending payment.
	StateLocked State = "LOCKED"
)

// Device is a registered PAYG unit.
type Device struct {
	ID        int64     `json:"id"`
	Serial    string    `json:"serial"`
	ProductID int64     `json:"productId"`
	State     State     `json:"state"`
	SaleID    *int64    `json:"saleId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Token is an unlock code valid for a payment window.
type Token struct {
	ID         int64     `json:"id"`
	DeviceID   int64     `json:"deviceId"`
	Code       string    `json:"code"`
	ValidFrom  time.Time `json:"validFrom"`
	ValidUntil time.Time `json:"validUntil"`
	Revoked    bool      `json:"revoked"`
	IssuedBy   int64     `json:"issuedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

var (
	// ErrNotFound indicates a missing device or token.
	ErrNotFound = errors.New("devices: not found")
	// ErrAlreadyExists indicates a duplicate serial.
	ErrAlreadyExists = errors.New("devices: serial already registered")
	// ErrNotAvailable indicates the device cannot be used in its current state.
	ErrNotAvailable = errors.New("devices: device not available")
	// ErrInvalidWindow indicates a bad token validity window.
	ErrInvalidWindow = errors.New("devices: validity window must be positive")
)
