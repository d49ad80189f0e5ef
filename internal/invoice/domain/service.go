package domain

import (
	"context"
	"errors"
)

// SettlementInvoices are the pair issued for one settled order.
type SettlementInvoices struct {
	Commission  Invoice `json:"commission"`
	PlatformFee Invoice `json:"platform_fee"`
}

type ListRequest struct {
	OrderID     string
	SellerID    string
	InvoiceType string
}

// Issuer creates immutable invoice records for settled orders and owns the
// issued -> voided transition.
type Issuer interface {
	IssueForOrder(ctx context.Context, orderID string) (*SettlementInvoices, error)
	Void(ctx context.Context, id string, voidedBy, reason string) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, req ListRequest) ([]Invoice, error)
}

var (
	ErrNotFound         = errors.New("invoice_not_found")
	ErrOrderNotFound    = errors.New("order_not_found")
	ErrPrematureInvoice = errors.New("premature_invoice")
	ErrAlreadyVoided    = errors.New("invoice_already_voided")

	// ErrDuplicateInvoiceNumber should be structurally impossible given the
	// locked sequence; if it surfaces, treat it as a data-integrity violation
	// needing manual reconciliation, never an automatic retry.
	ErrDuplicateInvoiceNumber = errors.New("duplicate_invoice_number")
)
