package domain

import (
	"context"
	"errors"

	orderdomain "github.com/gshop/marketplace/internal/order/domain"
)

// Engine settles a delivered order: it freezes the platform rates, derives
// the VAT breakdown from the item snapshots, computes commission and fee,
// and triggers invoice issuance. OnDelivered is idempotent; re-invocation
// resumes or no-ops depending on how far the order already progressed.
type Engine interface {
	OnDelivered(ctx context.Context, orderID string) (*orderdomain.Order, error)
}

var (
	// ErrInvalidOrderState covers zero items or a non-positive total. The
	// order stays pending, so the call is retryable once corrected.
	ErrInvalidOrderState = errors.New("invalid_order_state")
)
