package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gshop/marketplace/internal/clock"
	"github.com/gshop/marketplace/internal/config"
	"github.com/gshop/marketplace/internal/observability/metrics"
	"github.com/gshop/marketplace/internal/transferlimit/domain"
	verificationdomain "github.com/gshop/marketplace/internal/verification/domain"
	"github.com/gshop/marketplace/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Limits *config.LimitsHolder
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	limits *config.LimitsHolder
}

func NewService(p Params) domain.Tracker {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("transferlimit.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		limits: p.Limits,
	}
}

// CheckAndReserve holds the user's limit row locked for the whole check so
// concurrent transfers for the same user serialize and cannot both pass on
// a stale accumulator. Expired windows are reset in place before the check.
func (s *Service) CheckAndReserve(ctx context.Context, req domain.CheckRequest) (*domain.Decision, error) {
	userID, err := parseUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	var decision *domain.Decision
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.loadOrCreateForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		if !domain.SameCalendarDay(record.DailyResetAt, now) {
			record.DailyTransferred = 0
			record.DailyTransferCount = 0
			record.DailyResetAt = now
		}
		if !domain.SameCalendarMonth(record.MonthlyResetAt, now) {
			record.MonthlyTransferred = 0
			record.MonthlyTransferCount = 0
			record.MonthlyResetAt = now
		}

		caps := s.capsFor(record.VerificationLevel)

		// Daily is checked first so a transfer that breaches both caps
		// reports the tighter window.
		if record.DailyTransferred+req.Amount > caps.DailyCap {
			decision = &domain.Decision{
				Allowed:   false,
				Reason:    domain.ReasonDailyCap,
				Requested: req.Amount,
				Current:   record.DailyTransferred,
				Cap:       caps.DailyCap,
			}
		} else if record.MonthlyTransferred+req.Amount > caps.MonthlyCap {
			decision = &domain.Decision{
				Allowed:   false,
				Reason:    domain.ReasonMonthlyCap,
				Requested: req.Amount,
				Current:   record.MonthlyTransferred,
				Cap:       caps.MonthlyCap,
			}
		}

		if decision != nil {
			// Denied: persist only the window resets, if any.
			record.UpdatedAt = now
			return tx.WithContext(ctx).Save(record).Error
		}

		record.DailyTransferred += req.Amount
		record.MonthlyTransferred += req.Amount
		record.LifetimeTransferred += req.Amount
		record.DailyTransferCount++
		record.MonthlyTransferCount++
		record.LifetimeTransferCount++
		record.UpdatedAt = now
		if err := tx.WithContext(ctx).Save(record).Error; err != nil {
			return err
		}

		decision = &domain.Decision{
			Allowed:   true,
			Requested: req.Amount,
			Current:   record.DailyTransferred,
			Cap:       caps.DailyCap,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if decision.Allowed {
		metrics.Engine().IncTransferDecision("allowed", "")
	} else {
		metrics.Engine().IncTransferDecision("denied", decision.Reason)
		s.log.Info("transfer denied",
			zap.String("user_id", userID.String()),
			zap.String("reason", decision.Reason),
			zap.Int64("requested", decision.Requested),
			zap.Int64("current", decision.Current),
			zap.Int64("cap", decision.Cap),
		)
	}
	return decision, nil
}

func (s *Service) GetByUser(ctx context.Context, userID string) (*domain.TransferLimit, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	var record domain.TransferLimit
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Service) loadOrCreateForUpdate(ctx context.Context, tx *gorm.DB, userID snowflake.ID) (*domain.TransferLimit, error) {
	var record domain.TransferLimit
	err := db.ForUpdate(tx.WithContext(ctx)).Where("user_id = ?", userID).First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := s.clock.Now().UTC()
	record = domain.TransferLimit{
		ID:                s.genID.Generate(),
		UserID:            userID,
		VerificationLevel: s.lookupLevel(ctx, tx, userID),
		DailyResetAt:      now,
		MonthlyResetAt:    now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost the insert race; lock the winner's row instead.
			if err := db.ForUpdate(tx.WithContext(ctx)).Where("user_id = ?", userID).First(&record).Error; err != nil {
				return nil, err
			}
			return &record, nil
		}
		return nil, err
	}
	return &record, nil
}

// lookupLevel seeds a fresh limit row from the user's verification record.
// Users without one start at the unverified tier.
func (s *Service) lookupLevel(ctx context.Context, tx *gorm.DB, userID snowflake.ID) verificationdomain.Level {
	var verification verificationdomain.UserVerification
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&verification).Error
	if err != nil {
		return verificationdomain.LevelNone
	}
	return verification.Level
}

func (s *Service) capsFor(level verificationdomain.Level) config.TransferCaps {
	cfg := s.limits.Get()
	switch level {
	case verificationdomain.LevelOne:
		return cfg.Level1
	case verificationdomain.LevelTwo:
		return cfg.Level2
	default:
		return cfg.None
	}
}

func parseUserID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidUser
	}
	return id, nil
}
