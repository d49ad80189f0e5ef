package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/gshop/marketplace/internal/audit/domain"
	"github.com/gshop/marketplace/internal/verification/domain"
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
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	auditSvc auditdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("verification.service"),
		genID:    p.GenID,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.UserVerification, error) {
	userID, err := parseUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	if !req.RequestedLevel.Valid() || req.RequestedLevel == domain.LevelNone {
		return nil, domain.ErrInvalidLevel
	}
	documentType := strings.TrimSpace(req.DocumentType)
	documentNumber := strings.TrimSpace(req.DocumentNumber)
	if documentType == "" || documentNumber == "" {
		return nil, domain.ErrInvalidDocument
	}

	var record *domain.UserVerification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.loadForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		requested := req.RequestedLevel
		if existing == nil {
			entry := domain.UserVerification{
				ID:             s.genID.Generate(),
				UserID:         userID,
				Level:          domain.LevelNone,
				Status:         domain.StatusPending,
				DocumentType:   &documentType,
				DocumentNumber: &documentNumber,
				RequestedLevel: &requested,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
				return err
			}
			record = &entry
			return nil
		}

		// A new submission may only request a higher tier.
		if requested.Rank() <= existing.Level.Rank() {
			return domain.ErrLevelRegression
		}

		existing.Status = domain.StatusPending
		existing.DocumentType = &documentType
		existing.DocumentNumber = &documentNumber
		existing.RequestedLevel = &requested
		existing.ReviewedBy = nil
		existing.ReviewedAt = nil
		existing.UpdatedAt = now
		if err := tx.WithContext(ctx).Save(existing).Error; err != nil {
			return err
		}
		record = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Approve grants the requested level and propagates it to the user's
// transfer-limit row in the same transaction so caps raise atomically.
func (s *Service) Approve(ctx context.Context, req domain.ReviewRequest) (*domain.UserVerification, error) {
	return s.review(ctx, req, true)
}

func (s *Service) Reject(ctx context.Context, req domain.ReviewRequest) (*domain.UserVerification, error) {
	return s.review(ctx, req, false)
}

func (s *Service) review(ctx context.Context, req domain.ReviewRequest, approve bool) (*domain.UserVerification, error) {
	userID, err := parseUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	reviewedBy := strings.TrimSpace(req.ReviewedBy)

	var record *domain.UserVerification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.loadForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		if existing.Status != domain.StatusPending || existing.RequestedLevel == nil {
			return domain.ErrNotPending
		}

		now := time.Now().UTC()
		if approve {
			existing.Level = *existing.RequestedLevel
			existing.Status = domain.StatusApproved
		} else {
			existing.Status = domain.StatusRejected
		}
		existing.RequestedLevel = nil
		existing.ReviewedBy = &reviewedBy
		existing.ReviewedAt = &now
		existing.UpdatedAt = now
		if err := tx.WithContext(ctx).Save(existing).Error; err != nil {
			return err
		}

		if approve {
			if err := s.propagateLevel(ctx, tx, userID, existing.Level); err != nil {
				return err
			}
		}
		record = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := "verification.rejected"
	if approve {
		action = "verification.approved"
	}
	s.emitAudit(ctx, action, record, reviewedBy, nil)
	return record, nil
}

// Downgrade is the only path that lowers a level, and it is always an
// explicit admin action.
func (s *Service) Downgrade(ctx context.Context, req domain.DowngradeRequest) (*domain.UserVerification, error) {
	userID, err := parseUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	if !req.Level.Valid() {
		return nil, domain.ErrInvalidLevel
	}
	reviewedBy := strings.TrimSpace(req.ReviewedBy)

	var record *domain.UserVerification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.loadForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		if req.Level.Rank() >= existing.Level.Rank() {
			return domain.ErrInvalidLevel
		}

		now := time.Now().UTC()
		existing.Level = req.Level
		existing.ReviewedBy = &reviewedBy
		existing.ReviewedAt = &now
		existing.UpdatedAt = now
		if err := tx.WithContext(ctx).Save(existing).Error; err != nil {
			return err
		}
		if err := s.propagateLevel(ctx, tx, userID, req.Level); err != nil {
			return err
		}
		record = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		metadata["reason"] = reason
	}
	s.emitAudit(ctx, "verification.downgraded", record, reviewedBy, metadata)
	return record, nil
}

func (s *Service) GetByUser(ctx context.Context, userID string) (*domain.UserVerification, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	var record domain.UserVerification
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Service) loadForUpdate(ctx context.Context, tx *gorm.DB, userID snowflake.ID) (*domain.UserVerification, error) {
	var record domain.UserVerification
	err := db.ForUpdate(tx.WithContext(ctx)).Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (s *Service) propagateLevel(ctx context.Context, tx *gorm.DB, userID snowflake.ID, level domain.Level) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE transfer_limits
		 SET verification_level = ?, updated_at = ?
		 WHERE user_id = ?`,
		level,
		time.Now().UTC(),
		userID,
	).Error
}

func (s *Service) emitAudit(ctx context.Context, action string, record *domain.UserVerification, actorID string, extra map[string]any) {
	if record == nil {
		return
	}
	metadata := map[string]any{
		"user_id": record.UserID.String(),
		"level":   string(record.Level),
		"status":  string(record.Status),
	}
	for key, value := range extra {
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	targetID := record.UserID.String()
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	_ = s.auditSvc.Record(ctx, auditdomain.ActorTypeAdmin, actor, action, "user_verification", &targetID, metadata)
}

func parseUserID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidUser
	}
	return id, nil
}
