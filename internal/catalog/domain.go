// Package catalog manages products and product categories.
package catalog

import "time"

// Category groups products, e.g. solar panels, inverters, accessories.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is a sellable catalogue entry.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	CategoryID int64     `json:"productCategoryId"`
	UnitPrice  float64   `json:"unitPrice"`
	Currency   string    `json:"currency"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ProductInput carries create/update fields.
type ProductInput struct {
	Name       string  `json:"name" validate:"required,min=2"`
	SKU        string  `json:"sku" validate:"required,min=2"`
	CategoryID int64   `json:"productCategoryId" validate:"required,gt=0"`
	UnitPrice  float64 `json:"unitPrice" validate:"required,gt=0"`
	Currency   string  `json:"currency" validate:"required,len=3"`
	IsActive   *bool   `json:"isActive"`
}

// ListProductsRequest filters a product listing.
type ListProductsRequest struct {
	CategoryID *int64
	Search     *string
	ActiveOnly bool
	Limit      int
	Offset     int
}
