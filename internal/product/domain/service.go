package domain

import (
	"context"

	"github.com/gshop/marketplace/internal/vat"
)

type CreateRequest struct {
	SellerID string       `json:"seller_id"`
	Name     string       `json:"name"`
	Price    int64        `json:"price"`
	VatType  vat.Category `json:"vat_type"`
}

// UpdatePricingRequest changes price and/or VAT category. Either field may be
// nil to keep the current value; the base/VAT split is recomputed atomically
// with the change.
type UpdatePricingRequest struct {
	ID      string        `json:"id"`
	Price   *int64        `json:"price,omitempty"`
	VatType *vat.Category `json:"vat_type,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	UpdatePricing(ctx context.Context, req UpdatePricingRequest) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}
