package customers

// CreateCustomerRequest carries fields for a new customer.
type CreateCustomerRequest struct {
	FullName string  `json:"fullName" validate:"required,min=3"`
	Phone    string  `json:"phone" validate:"required,min=10"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address"`
	Region   *string `json:"region"`
	Notes    *string `json:"notes"`
}

// UpdateCustomerRequest carries partial updates.
type UpdateCustomerRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=3"`
	Phone    *string `json:"phone" validate:"omitempty,min=10"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address"`
	Region   *string `json:"region"`
	IsActive *bool   `json:"isActive"`
	Notes    *string `json:"notes"`
}

// ListCustomersRequest filters a customer listing.
type ListCustomersRequest struct {
	Search   *string
	IsActive *bool
	Limit    int
	Offset   int
}
