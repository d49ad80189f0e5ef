package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/gshop/marketplace/internal/audit/domain"
	"github.com/gshop/marketplace/internal/config"
	invoicedomain "github.com/gshop/marketplace/internal/invoice/domain"
	"github.com/gshop/marketplace/internal/observability/metrics"
	orderdomain "github.com/gshop/marketplace/internal/order/domain"
	configdomain "github.com/gshop/marketplace/internal/platformconfig/domain"
	"github.com/gshop/marketplace/internal/vat"
	"github.com/gshop/marketplace/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Cfg      config.Config
	Sequence configdomain.SequenceAllocator
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	cfg      config.Config
	sequence configdomain.SequenceAllocator
	auditSvc auditdomain.Service
}

func NewService(p Params) invoicedomain.Issuer {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		cfg:      p.Cfg,
		sequence: p.Sequence,
		auditSvc: p.AuditSvc,
	}
}

// IssueForOrder creates the commission invoice (to the seller) and the
// platform-fee invoice (to the buyer) for a settled order, then advances the
// order to invoiced. The numbering sequence row stays locked for the whole
// transaction so concurrent issuance never shares a number. Re-invoking on an
// already-invoiced order returns the existing pair.
func (s *Service) IssueForOrder(ctx context.Context, orderID string) (*invoicedomain.SettlementInvoices, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(orderID))
	if err != nil || id == 0 {
		return nil, invoicedomain.ErrOrderNotFound
	}

	var issued *invoicedomain.SettlementInvoices
	var freshlyIssued bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.loadOrderForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return invoicedomain.ErrOrderNotFound
		}

		switch order.CommissionStatus {
		case orderdomain.CommissionStatusInvoiced:
			pair, err := s.loadExistingPair(ctx, tx, order)
			if err != nil {
				return err
			}
			issued = pair
			return nil
		case orderdomain.CommissionStatusCalculated:
			// proceed
		default:
			return invoicedomain.ErrPrematureInvoice
		}

		now := time.Now().UTC()

		commissionInvoice, err := s.buildInvoice(ctx, tx, order, invoicedomain.InvoiceTypeCommission, now)
		if err != nil {
			return err
		}
		feeInvoice, err := s.buildInvoice(ctx, tx, order, invoicedomain.InvoiceTypePlatformFee, now)
		if err != nil {
			return err
		}

		for _, inv := range []*invoicedomain.Invoice{commissionInvoice, feeInvoice} {
			if err := tx.WithContext(ctx).Create(inv).Error; err != nil {
				if db.IsDuplicateKeyErr(err) {
					s.log.Error("invoice number collision, manual reconciliation required",
						zap.String("invoice_number", inv.InvoiceNumber),
						zap.String("order_id", order.ID.String()),
					)
					return invoicedomain.ErrDuplicateInvoiceNumber
				}
				return err
			}
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE orders
			 SET commission_invoice_id = ?, fee_invoice_id = ?, commission_status = ?, updated_at = ?
			 WHERE id = ?`,
			commissionInvoice.ID,
			feeInvoice.ID,
			orderdomain.CommissionStatusInvoiced,
			now,
			order.ID,
		).Error; err != nil {
			return err
		}

		issued = &invoicedomain.SettlementInvoices{
			Commission:  *commissionInvoice,
			PlatformFee: *feeInvoice,
		}
		freshlyIssued = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if freshlyIssued && issued != nil {
		for _, inv := range []invoicedomain.Invoice{issued.Commission, issued.PlatformFee} {
			metrics.Engine().IncInvoiceIssued(string(inv.InvoiceType))
			targetID := inv.ID.String()
			_ = s.auditSvc.Record(ctx, auditdomain.ActorTypeSystem, nil,
				"invoice.issued", "invoice", &targetID, map[string]any{
					"invoice_number": inv.InvoiceNumber,
					"invoice_type":   string(inv.InvoiceType),
					"order_id":       inv.OrderID.String(),
					"total_amount":   inv.TotalAmount,
				})
		}
	}
	return issued, nil
}

func (s *Service) Void(ctx context.Context, id string, voidedBy, reason string) (*invoicedomain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || invoiceID == 0 {
		return nil, invoicedomain.ErrNotFound
	}

	var voided *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice invoicedomain.Invoice
		if err := db.ForUpdate(tx.WithContext(ctx)).Where("id = ?", invoiceID).First(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invoicedomain.ErrNotFound
			}
			return err
		}
		if invoice.Status != invoicedomain.InvoiceStatusIssued {
			return invoicedomain.ErrAlreadyVoided
		}

		now := time.Now().UTC()
		// Only the status flips; financial fields are immutable post-issuance.
		if err := tx.WithContext(ctx).Exec(
			`UPDATE invoices
			 SET status = ?, voided_at = ?
			 WHERE id = ?`,
			invoicedomain.InvoiceStatusVoided,
			now,
			invoiceID,
		).Error; err != nil {
			return err
		}
		invoice.Status = invoicedomain.InvoiceStatusVoided
		invoice.VoidedAt = &now
		voided = &invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	targetID := voided.ID.String()
	metadata := map[string]any{
		"invoice_number": voided.InvoiceNumber,
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		metadata["reason"] = reason
	}
	var actor *string
	if voidedBy = strings.TrimSpace(voidedBy); voidedBy != "" {
		actor = &voidedBy
	}
	_ = s.auditSvc.Record(ctx, auditdomain.ActorTypeAdmin, actor,
		"invoice.voided", "invoice", &targetID, metadata)

	return voided, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || invoiceID == 0 {
		return nil, invoicedomain.ErrNotFound
	}

	var invoice invoicedomain.Invoice
	if err := s.db.WithContext(ctx).Where("id = ?", invoiceID).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListRequest) ([]invoicedomain.Invoice, error) {
	stmt := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{})
	if orderID := strings.TrimSpace(req.OrderID); orderID != "" {
		id, err := snowflake.ParseString(orderID)
		if err != nil {
			return nil, invoicedomain.ErrOrderNotFound
		}
		stmt = stmt.Where("order_id = ?", id)
	}
	if sellerID := strings.TrimSpace(req.SellerID); sellerID != "" {
		id, err := snowflake.ParseString(sellerID)
		if err != nil {
			return nil, invoicedomain.ErrNotFound
		}
		stmt = stmt.Where("seller_id = ?", id)
	}
	if invoiceType := strings.TrimSpace(req.InvoiceType); invoiceType != "" {
		stmt = stmt.Where("invoice_type = ?", invoiceType)
	}

	var invoices []invoicedomain.Invoice
	if err := stmt.Order("issued_at desc, id desc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// buildInvoice allocates the next number and assembles one invoice. The
// platform's own charges carry IVA at the general rate; amounts on the order
// are tax-inclusive, so the subtotal/VAT split mirrors the product split.
func (s *Service) buildInvoice(ctx context.Context, tx *gorm.DB, order *orderdomain.Order, invoiceType invoicedomain.InvoiceType, now time.Time) (*invoicedomain.Invoice, error) {
	number, _, err := s.sequence.NextInvoiceNumber(ctx, tx)
	if err != nil {
		return nil, err
	}

	var total int64
	recipientType := invoicedomain.RecipientTypeSeller
	recipientID := order.SellerID
	if invoiceType == invoicedomain.InvoiceTypeCommission {
		total = order.SellerCommissionAmount
	} else {
		total = order.PlatformFeeAmount
		recipientType = invoicedomain.RecipientTypeBuyer
		recipientID = order.BuyerID
	}
	base, amount := vat.Split(total, vat.CategoryGeneral)

	buyerID := order.BuyerID
	return &invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		InvoiceNumber: number,
		InvoiceType:   invoiceType,
		OrderID:       order.ID,
		SellerID:      order.SellerID,
		BuyerID:       &buyerID,
		IssuerName:    s.cfg.BusinessName,
		IssuerTaxID:   s.cfg.BusinessTaxID,
		IssuerAddress: s.cfg.BusinessAddress,
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Subtotal:      base,
		VatAmount:     amount,
		TotalAmount:   total,
		Status:        invoicedomain.InvoiceStatusIssued,
		IssuedAt:      now,
		CreatedAt:     now,
	}, nil
}

func (s *Service) loadOrderForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.ForUpdate(tx.WithContext(ctx)).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (s *Service) loadExistingPair(ctx context.Context, tx *gorm.DB, order *orderdomain.Order) (*invoicedomain.SettlementInvoices, error) {
	if order.CommissionInvoiceID == nil || order.FeeInvoiceID == nil {
		return nil, invoicedomain.ErrNotFound
	}

	var pair invoicedomain.SettlementInvoices
	if err := tx.WithContext(ctx).Where("id = ?", *order.CommissionInvoiceID).First(&pair.Commission).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("id = ?", *order.FeeInvoiceID).First(&pair.PlatformFee).Error; err != nil {
		return nil, err
	}
	return &pair, nil
}
