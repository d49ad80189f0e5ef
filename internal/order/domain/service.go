package domain

import (
	"context"
	"errors"
)

type CreateItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CreateRequest struct {
	BuyerID  string       `json:"buyer_id"`
	SellerID string       `json:"seller_id"`
	Items    []CreateItem `json:"items"`
}

type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*OrderDetail, error)
	GetByID(ctx context.Context, id string) (*OrderDetail, error)
}

var (
	ErrNotFound        = errors.New("order_not_found")
	ErrInvalidBuyer    = errors.New("invalid_buyer")
	ErrInvalidSeller   = errors.New("invalid_seller")
	ErrEmptyOrder      = errors.New("empty_order")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrProductNotFound = errors.New("product_not_found")
	ErrSellerMismatch  = errors.New("seller_mismatch")
	ErrInactiveProduct = errors.New("inactive_product")
)
