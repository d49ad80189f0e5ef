package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gshop/marketplace/internal/platformconfig/domain"
	"github.com/gshop/marketplace/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByKey(ctx context.Context, conn *gorm.DB, key string) (*domain.PlatformConfig, error) {
	var entry domain.PlatformConfig
	err := conn.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repo) FindByKeyForUpdate(ctx context.Context, tx *gorm.DB, key string) (*domain.PlatformConfig, error) {
	var entry domain.PlatformConfig
	err := db.ForUpdate(tx.WithContext(ctx)).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, category string) ([]domain.PlatformConfig, error) {
	var entries []domain.PlatformConfig
	stmt := conn.WithContext(ctx).Model(&domain.PlatformConfig{})
	if category != "" {
		stmt = stmt.Where("category = ?", category)
	}
	if err := stmt.Order("key asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Upsert replaces the value wholesale; config updates are never merges.
func (r *repo) Upsert(ctx context.Context, conn *gorm.DB, entry *domain.PlatformConfig) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.FindByKeyForUpdate(ctx, tx, entry.Key)
		if err != nil {
			return err
		}
		if existing == nil {
			return tx.WithContext(ctx).Create(entry).Error
		}

		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
		return tx.WithContext(ctx).Exec(
			`UPDATE platform_config
			 SET value = ?, description = ?, category = ?, updated_by = ?, updated_at = ?
			 WHERE key = ?`,
			entry.Value,
			entry.Description,
			entry.Category,
			entry.UpdatedBy,
			entry.UpdatedAt,
			entry.Key,
		).Error
	})
}

func (r *repo) UpdateValue(ctx context.Context, tx *gorm.DB, key string, value datatypes.JSONMap) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE platform_config
		 SET value = ?, updated_at = ?
		 WHERE key = ?`,
		value,
		time.Now().UTC(),
		key,
	).Error
}
