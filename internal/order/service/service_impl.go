package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/gshop/marketplace/internal/order/domain"
	productdomain "github.com/gshop/marketplace/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) orderdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("order.service"),
		genID: p.GenID,
	}
}

// Create persists the order with each item's VAT fields snapshotted from the
// product row as it exists right now. Later product edits must never alter
// these orders, so the split is copied, not referenced.
func (s *Service) Create(ctx context.Context, req orderdomain.CreateRequest) (*orderdomain.OrderDetail, error) {
	buyerID, err := snowflake.ParseString(strings.TrimSpace(req.BuyerID))
	if err != nil || buyerID == 0 {
		return nil, orderdomain.ErrInvalidBuyer
	}
	sellerID, err := snowflake.ParseString(strings.TrimSpace(req.SellerID))
	if err != nil || sellerID == 0 {
		return nil, orderdomain.ErrInvalidSeller
	}
	if len(req.Items) == 0 {
		return nil, orderdomain.ErrEmptyOrder
	}

	now := time.Now().UTC()
	order := orderdomain.Order{
		ID:               s.genID.Generate(),
		BuyerID:          buyerID,
		SellerID:         sellerID,
		Status:           orderdomain.OrderStatusPlaced,
		CommissionStatus: orderdomain.CommissionStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var items []orderdomain.OrderItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range req.Items {
			if line.Quantity <= 0 {
				return orderdomain.ErrInvalidQuantity
			}
			productID, err := snowflake.ParseString(strings.TrimSpace(line.ProductID))
			if err != nil || productID == 0 {
				return orderdomain.ErrProductNotFound
			}

			var product productdomain.Product
			if err := tx.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return orderdomain.ErrProductNotFound
				}
				return err
			}
			if product.SellerID != sellerID {
				return orderdomain.ErrSellerMismatch
			}
			if !product.Active {
				return orderdomain.ErrInactiveProduct
			}

			item := orderdomain.OrderItem{
				ID:               s.genID.Generate(),
				OrderID:          order.ID,
				ProductID:        product.ID,
				ProductName:      product.Name,
				Quantity:         line.Quantity,
				UnitPrice:        product.Price,
				VatType:          product.VatType,
				BasePrice:        product.BasePrice,
				VatAmountPerUnit: product.VatAmount,
				TotalBasePrice:   product.BasePrice * line.Quantity,
				TotalVatAmount:   product.VatAmount * line.Quantity,
				CreatedAt:        now,
			}
			order.TotalAmount += product.Price * line.Quantity
			items = append(items, item)
		}

		if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).Create(&items).Error
	})
	if err != nil {
		return nil, err
	}

	return &orderdomain.OrderDetail{Order: order, Items: items}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*orderdomain.OrderDetail, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || orderID == 0 {
		return nil, orderdomain.ErrNotFound
	}

	var order orderdomain.Order
	if err := s.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderdomain.ErrNotFound
		}
		return nil, err
	}

	var items []orderdomain.OrderItem
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &orderdomain.OrderDetail{Order: order, Items: items}, nil
}
