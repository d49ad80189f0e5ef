// Package domain contains persistence models for settlement invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceType distinguishes what the platform is billing for.
type InvoiceType string

const (
	InvoiceTypeCommission  InvoiceType = "commission"   // billed to the seller
	InvoiceTypePlatformFee InvoiceType = "platform_fee" // billed to the buyer
	InvoiceTypeOther       InvoiceType = "other"
)

// InvoiceStatus is the only mutable aspect of an invoice. Financial fields
// never change after issuance; corrections are offsetting invoices.
type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusVoided InvoiceStatus = "voided"
)

type RecipientType string

const (
	RecipientTypeSeller RecipientType = "seller"
	RecipientTypeBuyer  RecipientType = "buyer"
)

// Invoice is the canonical record of a platform charge. Numbers are unique
// and sequential per the platform numbering sequence.
type Invoice struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceNumber string       `gorm:"type:text;not null;uniqueIndex" json:"invoice_number"`
	InvoiceType   InvoiceType  `gorm:"type:text;not null;index" json:"invoice_type"`

	OrderID  snowflake.ID  `gorm:"not null;index" json:"order_id"`
	SellerID snowflake.ID  `gorm:"not null;index" json:"seller_id"`
	BuyerID  *snowflake.ID `gorm:"index" json:"buyer_id,omitempty"`

	IssuerName    string `gorm:"type:text;not null" json:"issuer_name"`
	IssuerTaxID   string `gorm:"type:text;not null" json:"issuer_tax_id"`
	IssuerAddress string `gorm:"type:text" json:"issuer_address"`

	RecipientType RecipientType `gorm:"type:text;not null" json:"recipient_type"`
	RecipientID   snowflake.ID  `gorm:"not null;index" json:"recipient_id"`

	Subtotal    int64 `gorm:"not null" json:"subtotal"`
	VatAmount   int64 `gorm:"not null" json:"vat_amount"`
	TotalAmount int64 `gorm:"not null" json:"total_amount"`

	Status   InvoiceStatus `gorm:"type:text;not null;default:'issued'" json:"status"`
	IssuedAt time.Time     `gorm:"not null" json:"issued_at"`
	VoidedAt *time.Time    `json:"voided_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Invoice) TableName() string { return "invoices" }
