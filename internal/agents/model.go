package agents

import "time"

// Agent is a field sales agent.
type Agent struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	Region    string    `json:"region"`
	IsActive  bool      `json:"isActive"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateAgentRequest carries fields for a new agent.
type CreateAgentRequest struct {
	FullName string  `json:"fullName" validate:"required,min=3"`
	Phone    string  `json:"phone" validate:"required,min=10"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Region   string  `json:"region" validate:"required,min=2"`
}

// UpdateAgentRequest carries partial updates.
type UpdateAgentRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=3"`
	Phone    *string `json:"phone" validate:"omitempty,min=10"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Region   *string `json:"region" validate:"omitempty,min=2"`
	IsActive *bool   `json:"isActive"`
}

// ListAgentsRequest filters an agent listing.
type ListAgentsRequest struct {
	Search   *string
	Region   *string
	IsActive *bool
	Limit    int
	Offset   int
}
