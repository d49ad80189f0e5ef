package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gshop/marketplace/internal/product/domain"
	"github.com/gshop/marketplace/internal/vat"
	"github.com/gshop/marketplace/pkg/db"
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

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Product, error) {
	sellerID, err := snowflake.ParseString(strings.TrimSpace(req.SellerID))
	if err != nil || sellerID == 0 {
		return nil, domain.ErrInvalidSeller
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:        s.genID.Generate(),
		SellerID:  sellerID,
		Name:      strings.TrimSpace(req.Name),
		Price:     req.Price,
		VatType:   req.VatType,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	product.BasePrice, product.VatAmount = vat.Split(product.Price, product.VatType)

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdatePricing rewrites price, category, and the derived split in a single
// update so a reader can never observe price != base + vat.
func (s *Service) UpdatePricing(ctx context.Context, req domain.UpdatePricingRequest) (*domain.Product, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return nil, domain.ErrNotFound
	}

	var updated *domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		if err := db.ForUpdate(tx.WithContext(ctx)).Where("id = ?", id).First(&product).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}

		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.VatType != nil {
			product.VatType = *req.VatType
		}
		if err := product.Validate(); err != nil {
			return err
		}

		product.BasePrice, product.VatAmount = vat.Split(product.Price, product.VatType)
		product.UpdatedAt = time.Now().UTC()

		if err := tx.WithContext(ctx).Exec(
			`UPDATE products
			 SET price = ?, vat_type = ?, base_price = ?, vat_amount = ?, updated_at = ?
			 WHERE id = ?`,
			product.Price,
			product.VatType,
			product.BasePrice,
			product.VatAmount,
			product.UpdatedAt,
			product.ID,
		).Error; err != nil {
			return err
		}
		updated = &product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || productID == 0 {
		return nil, domain.ErrNotFound
	}

	var product domain.Product
	if err := s.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}
