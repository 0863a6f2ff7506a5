package customers

import "time"

// Customer is a dashboard customer record.
type Customer struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Region    *string   `json:"region,omitempty"`
	IsActive  bool      `json:"isActive"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
