package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/gshop/marketplace/internal/audit/domain"
	auditrepository "github.com/gshop/marketplace/internal/audit/repository"
	auditservice "github.com/gshop/marketplace/internal/audit/service"
	"github.com/gshop/marketplace/internal/platformconfig/domain"
	"github.com/gshop/marketplace/internal/platformconfig/repository"
	"github.com/gshop/marketplace/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupConfigService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.PlatformConfig{}, &auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepository.Provide(),
	})

	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		AuditSvc: auditSvc,
	})
	return svc, db
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	svc, _ := setupConfigService(t)

	_, err := svc.Get(context.Background(), domain.KeySellerCommissionRate)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetRejectsOutOfRangeRate(t *testing.T) {
	svc, _ := setupConfigService(t)
	ctx := context.Background()

	for _, rate := range []float64{-1, 50.001, 99} {
		_, err := svc.Set(ctx, domain.SetRequest{
			Key:       domain.KeySellerCommissionRate,
			Value:     datatypes.JSONMap{"rate": rate, "type": "percentage"},
			UpdatedBy: "admin-1",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRate, "rate %v", rate)
	}

	// Boundary values are inclusive.
	for _, rate := range []float64{0, 50} {
		_, err := svc.Set(ctx, domain.SetRequest{
			Key:       domain.KeySellerCommissionRate,
			Value:     datatypes.JSONMap{"rate": rate, "type": "percentage"},
			UpdatedBy: "admin-1",
		})
		assert.NoError(t, err, "rate %v", rate)
	}
}

func TestSetAndRateSnapshot(t *testing.T) {
	svc, db := setupConfigService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, domain.SetRequest{
		Key:       domain.KeySellerCommissionRate,
		Value:     datatypes.JSONMap{"rate": 7.0, "type": "percentage"},
		UpdatedBy: "admin-1",
	})
	require.NoError(t, err)
	_, err = svc.Set(ctx, domain.SetRequest{
		Key:       domain.KeyBuyerPlatformFeeRate,
		Value:     datatypes.JSONMap{"rate": 3.0, "type": "percentage"},
		UpdatedBy: "admin-1",
	})
	require.NoError(t, err)

	snapshot, err := svc.RateSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7.0, snapshot.SellerCommissionRate)
	assert.Equal(t, 3.0, snapshot.BuyerPlatformFeeRate)

	var auditCount int64
	require.NoError(t, db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", "platform_config.set").
		Count(&auditCount).Error)
	assert.Equal(t, int64(2), auditCount)
}

func TestSetReplacesExistingValue(t *testing.T) {
	svc, _ := setupConfigService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, domain.SetRequest{
		Key:       domain.KeySellerCommissionRate,
		Value:     datatypes.JSONMap{"rate": 7.0, "type": "percentage"},
		UpdatedBy: "admin-1",
	})
	require.NoError(t, err)

	_, err = svc.Set(ctx, domain.SetRequest{
		Key:       domain.KeySellerCommissionRate,
		Value:     datatypes.JSONMap{"rate": 10.0, "type": "percentage"},
		UpdatedBy: "admin-2",
	})
	require.NoError(t, err)

	entry, err := svc.Get(ctx, domain.KeySellerCommissionRate)
	require.NoError(t, err)
	rate, err := domain.RateFromValue(entry.Value)
	require.NoError(t, err)
	assert.Equal(t, 10.0, rate)
}

func TestSetSequenceValidation(t *testing.T) {
	svc, _ := setupConfigService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, domain.SetRequest{
		Key:       domain.KeyInvoiceNumberingSequence,
		Value:     datatypes.JSONMap{"prefix": "", "current": 0, "padding": 8},
		UpdatedBy: "admin-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSequence)

	_, err = svc.Set(ctx, domain.SetRequest{
		Key:       domain.KeyInvoiceNumberingSequence,
		Value:     datatypes.JSONMap{"prefix": "GSHOP", "current": -3, "padding": 8},
		UpdatedBy: "admin-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSequence)
}

func TestNextInvoiceNumberSequential(t *testing.T) {
	svc, db := setupConfigService(t)
	ctx := context.Background()

	require.NoError(t, seed.EnsureDefaults(db))

	var numbers []string
	for i := 0; i < 3; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			number, seq, err := svc.NextInvoiceNumber(ctx, tx)
			if err != nil {
				return err
			}
			assert.Equal(t, int64(i+1), seq)
			numbers = append(numbers, number)
			return nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"GSHOP-00000001", "GSHOP-00000002", "GSHOP-00000003"}, numbers)

	entry, err := svc.Get(ctx, domain.KeyInvoiceNumberingSequence)
	require.NoError(t, err)
	seq, err := domain.SequenceFromValue(entry.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq.Current)
}

func TestSequenceFormat(t *testing.T) {
	seq := domain.NumberingSequence{Prefix: "GSHOP", Padding: 8}
	number, err := seq.Format(123)
	require.NoError(t, err)
	assert.Equal(t, "GSHOP-00000123", number)

	_, err = seq.Format(0)
	assert.Error(t, err)
}
