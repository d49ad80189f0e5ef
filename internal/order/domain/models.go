package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gshop/marketplace/internal/vat"
	"gorm.io/datatypes"
)

// OrderStatus is the fulfillment state visible to this core. The shipping
// pipeline owns the states between placed and delivered.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusDelivered OrderStatus = "delivered"
)

// CommissionStatus tracks the settlement state machine:
// pending -> calculated -> invoiced. The transition out of pending fires
// exactly once per order.
type CommissionStatus string

const (
	CommissionStatusPending    CommissionStatus = "pending"
	CommissionStatusCalculated CommissionStatus = "calculated"
	CommissionStatusInvoiced   CommissionStatus = "invoiced"
)

// Order is the settlement aggregate. The commission/fee rate fields are
// frozen at calculation time and never recomputed, so later configuration
// changes cannot alter historical orders.
type Order struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	BuyerID  snowflake.ID `gorm:"not null;index" json:"buyer_id"`
	SellerID snowflake.ID `gorm:"not null;index" json:"seller_id"`

	Status      OrderStatus `gorm:"type:text;not null;default:'placed'" json:"status"`
	TotalAmount int64       `gorm:"not null" json:"total_amount"`

	SubtotalBase   int64                             `gorm:"not null;default:0" json:"subtotal_base"`
	TotalVatAmount int64                             `gorm:"not null;default:0" json:"total_vat_amount"`
	VatBreakdown   datatypes.JSONType[vat.Breakdown] `gorm:"type:jsonb" json:"vat_breakdown"`

	PlatformFeeRate        *float64 `gorm:"type:numeric(6,3)" json:"platform_fee_rate,omitempty"`
	PlatformFeeAmount      int64    `gorm:"not null;default:0" json:"platform_fee_amount"`
	SellerCommissionRate   *float64 `gorm:"type:numeric(6,3)" json:"seller_commission_rate,omitempty"`
	SellerCommissionAmount int64    `gorm:"not null;default:0" json:"seller_commission_amount"`
	SellerNetAmount        int64    `gorm:"not null;default:0" json:"seller_net_amount"`

	CommissionStatus    CommissionStatus `gorm:"type:text;not null;default:'pending';index" json:"commission_status"`
	CommissionInvoiceID *snowflake.ID    `gorm:"index" json:"commission_invoice_id,omitempty"`
	FeeInvoiceID        *snowflake.ID    `gorm:"index" json:"fee_invoice_id,omitempty"`

	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// OrderItem freezes the product's price and VAT classification at
// order-creation time. Product edits after that point never touch these
// rows.
type OrderItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"not null;index" json:"order_id"`
	ProductID snowflake.ID `gorm:"not null;index" json:"product_id"`

	ProductName string `gorm:"type:text;not null" json:"product_name"`
	Quantity    int64  `gorm:"not null" json:"quantity"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`

	VatType          vat.Category `gorm:"type:text;not null" json:"vat_type"`
	BasePrice        int64        `gorm:"not null" json:"base_price"`
	VatAmountPerUnit int64        `gorm:"not null" json:"vat_amount_per_unit"`
	TotalBasePrice   int64        `gorm:"not null" json:"total_base_price"`
	TotalVatAmount   int64        `gorm:"not null" json:"total_vat_amount"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }
