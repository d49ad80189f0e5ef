package domain

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RateSnapshot carries the two platform rates read at one instant. The
// settlement engine freezes a snapshot onto each order; it never reads
// ambient configuration directly.
type RateSnapshot struct {
	SellerCommissionRate float64 `json:"seller_commission_rate"`
	BuyerPlatformFeeRate float64 `json:"buyer_platform_fee_rate"`
}

// RateProvider is the read surface the settlement engine depends on.
type RateProvider interface {
	RateSnapshot(ctx context.Context) (RateSnapshot, error)
}

// SequenceAllocator hands out invoice numbers. NextInvoiceNumber must run
// inside the caller's transaction: the sequence row is locked for the
// duration so concurrent issuance can never share a number.
type SequenceAllocator interface {
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (string, int64, error)
}

type SetRequest struct {
	Key         string            `json:"key"`
	Value       datatypes.JSONMap `json:"value"`
	Description *string           `json:"description,omitempty"`
	Category    string            `json:"category,omitempty"`
	UpdatedBy   string            `json:"updated_by"`
}

type Service interface {
	Get(ctx context.Context, key string) (*PlatformConfig, error)
	List(ctx context.Context, category string) ([]PlatformConfig, error)
	Set(ctx context.Context, req SetRequest) (*PlatformConfig, error)
}

type Repository interface {
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*PlatformConfig, error)
	FindByKeyForUpdate(ctx context.Context, tx *gorm.DB, key string) (*PlatformConfig, error)
	List(ctx context.Context, db *gorm.DB, category string) ([]PlatformConfig, error)
	Upsert(ctx context.Context, db *gorm.DB, entry *PlatformConfig) error
	UpdateValue(ctx context.Context, tx *gorm.DB, key string, value datatypes.JSONMap) error
}
