package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gshop/marketplace/internal/vat"
)

// Product carries the catalog fields settlement depends on. Price is
// tax-inclusive; BasePrice and VatAmount are derived and recomputed in the
// same write as any price or category change so price == base + vat at all
// times.
type Product struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SellerID  snowflake.ID `gorm:"not null;index" json:"seller_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Price     int64        `gorm:"not null" json:"price"`
	VatType   vat.Category `gorm:"type:text;not null" json:"vat_type"`
	BasePrice int64        `gorm:"not null" json:"base_price"`
	VatAmount int64        `gorm:"not null" json:"vat_amount"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

var (
	ErrNotFound       = errors.New("product_not_found")
	ErrInvalidSeller  = errors.New("invalid_seller")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrInvalidVatType = errors.New("invalid_vat_type")
)

func (p *Product) Validate() error {
	if p.SellerID == 0 {
		return ErrInvalidSeller
	}
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	if !p.VatType.Valid() {
		return ErrInvalidVatType
	}
	return nil
}
