package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/gshop/marketplace/internal/audit/domain"
	"github.com/gshop/marketplace/internal/commission"
	invoicedomain "github.com/gshop/marketplace/internal/invoice/domain"
	"github.com/gshop/marketplace/internal/observability/metrics"
	orderdomain "github.com/gshop/marketplace/internal/order/domain"
	configdomain "github.com/gshop/marketplace/internal/platformconfig/domain"
	settlementdomain "github.com/gshop/marketplace/internal/settlement/domain"
	"github.com/gshop/marketplace/internal/vat"
	"github.com/gshop/marketplace/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Rates    configdomain.RateProvider
	Issuer   invoicedomain.Issuer
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	rates    configdomain.RateProvider
	issuer   invoicedomain.Issuer
	auditSvc auditdomain.Service
}

func NewService(p Params) settlementdomain.Engine {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("settlement.service"),
		rates:    p.Rates,
		issuer:   p.Issuer,
		auditSvc: p.AuditSvc,
	}
}

// OnDelivered drives the commission state machine:
// pending -> calculated -> invoiced.
//
// The calculation writes every computed field in one transactional update, so
// a failure can never leave partial amounts behind. The commission_status
// guard makes the whole call safe to repeat.
func (s *Service) OnDelivered(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(orderID))
	if err != nil || id == 0 {
		return nil, orderdomain.ErrNotFound
	}

	var snapshot configdomain.RateSnapshot
	var calculated bool
	var needInvoices bool

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.loadOrderForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return orderdomain.ErrNotFound
		}

		switch order.CommissionStatus {
		case orderdomain.CommissionStatusInvoiced:
			return nil
		case orderdomain.CommissionStatusCalculated:
			// Calculation already ran; only invoice issuance is outstanding.
			needInvoices = true
			return nil
		}

		items, err := s.loadItems(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 || order.TotalAmount <= 0 {
			return settlementdomain.ErrInvalidOrderState
		}

		// Rates are read once here and frozen onto the order. Config changes
		// after this point never touch this order again.
		snapshot, err = s.rates.RateSnapshot(ctx)
		if err != nil {
			return err
		}

		var breakdown vat.Breakdown
		for _, item := range items {
			breakdown.Add(item.VatType, item.TotalBasePrice, item.TotalVatAmount, 1)
		}

		result := commission.Calculate(order.TotalAmount, snapshot.SellerCommissionRate, snapshot.BuyerPlatformFeeRate)

		now := time.Now().UTC()
		deliveredAt := order.DeliveredAt
		if deliveredAt == nil {
			deliveredAt = &now
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE orders
			 SET subtotal_base = ?, total_vat_amount = ?, vat_breakdown = ?,
			     platform_fee_rate = ?, platform_fee_amount = ?,
			     seller_commission_rate = ?, seller_commission_amount = ?,
			     seller_net_amount = ?, commission_status = ?,
			     status = ?, delivered_at = ?, updated_at = ?
			 WHERE id = ?`,
			breakdown.TotalBase(),
			breakdown.TotalVat(),
			datatypes.NewJSONType(breakdown),
			snapshot.BuyerPlatformFeeRate,
			result.PlatformFeeAmount,
			snapshot.SellerCommissionRate,
			result.SellerCommissionAmount,
			result.SellerNetAmount,
			orderdomain.CommissionStatusCalculated,
			orderdomain.OrderStatusDelivered,
			deliveredAt,
			now,
			order.ID,
		).Error; err != nil {
			return err
		}

		calculated = true
		needInvoices = true
		return nil
	})
	if err != nil {
		metrics.Engine().IncSettlement("failed")
		return nil, err
	}

	if calculated {
		metrics.Engine().IncSettlement("calculated")
		targetID := id.String()
		_ = s.auditSvc.Record(ctx, auditdomain.ActorTypeSystem, nil,
			"order.settled", "order", &targetID, map[string]any{
				"seller_commission_rate":  snapshot.SellerCommissionRate,
				"buyer_platform_fee_rate": snapshot.BuyerPlatformFeeRate,
			})
	}

	if needInvoices {
		if _, err := s.issuer.IssueForOrder(ctx, id.String()); err != nil {
			// The order stays calculated; a retry resumes at issuance.
			s.log.Warn("invoice issuance failed after settlement",
				zap.String("order_id", id.String()),
				zap.Error(err),
			)
			return nil, err
		}
	}

	var order orderdomain.Order
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
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

func (s *Service) loadItems(ctx context.Context, tx *gorm.DB, orderID snowflake.ID) ([]orderdomain.OrderItem, error) {
	var items []orderdomain.OrderItem
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
