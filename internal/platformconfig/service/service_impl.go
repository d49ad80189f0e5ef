package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/gshop/marketplace/internal/audit/domain"
	"github.com/gshop/marketplace/internal/commission"
	"github.com/gshop/marketplace/internal/platformconfig/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func NewService(p Params) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("platformconfig.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Get(ctx context.Context, key string) (*domain.PlatformConfig, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrInvalidKey
	}
	entry, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		// Callers decide fallback policy; this store never silently defaults.
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, category string) ([]domain.PlatformConfig, error) {
	return s.repo.List(ctx, s.db, strings.TrimSpace(category))
}

func (s *Service) Set(ctx context.Context, req domain.SetRequest) (*domain.PlatformConfig, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, domain.ErrInvalidKey
	}
	if len(req.Value) == 0 {
		return nil, domain.ErrInvalidValue
	}
	if err := validateValue(key, req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.PlatformConfig{
		ID:          s.genID.Generate(),
		Key:         key,
		Value:       req.Value,
		Description: req.Description,
		Category:    categoryFor(key, req.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if updatedBy := strings.TrimSpace(req.UpdatedBy); updatedBy != "" {
		entry.UpdatedBy = &updatedBy
	}

	if err := s.repo.Upsert(ctx, s.db, &entry); err != nil {
		return nil, err
	}

	actorID := strings.TrimSpace(req.UpdatedBy)
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	_ = s.auditSvc.Record(ctx, auditdomain.ActorTypeAdmin, actor,
		"platform_config.set", "platform_config", &entry.Key, map[string]any{
			"key":   entry.Key,
			"value": map[string]any(entry.Value),
		})

	return &entry, nil
}

// RateSnapshot reads both rate keys at one instant. Missing keys surface as
// config_not_found; the settlement engine treats that as a hard failure.
func (s *Service) RateSnapshot(ctx context.Context) (domain.RateSnapshot, error) {
	seller, err := s.rate(ctx, domain.KeySellerCommissionRate)
	if err != nil {
		return domain.RateSnapshot{}, err
	}
	buyer, err := s.rate(ctx, domain.KeyBuyerPlatformFeeRate)
	if err != nil {
		return domain.RateSnapshot{}, err
	}
	return domain.RateSnapshot{
		SellerCommissionRate: seller,
		BuyerPlatformFeeRate: buyer,
	}, nil
}

// NextInvoiceNumber increments the numbering sequence under a row lock held
// by the caller's transaction and returns the formatted number and raw
// sequence value.
func (s *Service) NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (string, int64, error) {
	entry, err := s.repo.FindByKeyForUpdate(ctx, tx, domain.KeyInvoiceNumberingSequence)
	if err != nil {
		return "", 0, err
	}
	if entry == nil {
		return "", 0, domain.ErrNotFound
	}

	seq, err := domain.SequenceFromValue(entry.Value)
	if err != nil {
		return "", 0, err
	}

	seq.Current++
	number, err := seq.Format(seq.Current)
	if err != nil {
		return "", 0, err
	}

	if err := s.repo.UpdateValue(ctx, tx, domain.KeyInvoiceNumberingSequence, seq.Value()); err != nil {
		return "", 0, err
	}
	return number, seq.Current, nil
}

func (s *Service) rate(ctx context.Context, key string) (float64, error) {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return domain.RateFromValue(entry.Value)
}

func validateValue(key string, req domain.SetRequest) error {
	switch key {
	case domain.KeySellerCommissionRate, domain.KeyBuyerPlatformFeeRate:
		rate, err := domain.RateFromValue(req.Value)
		if err != nil {
			return err
		}
		if !commission.RateInRange(rate) {
			return domain.ErrInvalidRate
		}
	case domain.KeyInvoiceNumberingSequence:
		if _, err := domain.SequenceFromValue(req.Value); err != nil {
			return err
		}
	}
	return nil
}

func categoryFor(key, requested string) string {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested
	}
	switch key {
	case domain.KeySellerCommissionRate, domain.KeyBuyerPlatformFeeRate:
		return domain.CategoryCommissions
	case domain.KeyInvoiceNumberingSequence:
		return domain.CategoryInvoicing
	default:
		return "general"
	}
}
