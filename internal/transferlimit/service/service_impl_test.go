package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/gshop/marketplace/internal/clock"
	"github.com/gshop/marketplace/internal/config"
	"github.com/gshop/marketplace/internal/transferlimit/domain"
	verificationdomain "github.com/gshop/marketplace/internal/verification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type limitFixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	tracker domain.Tracker
}

func setupTracker(t *testing.T) *limitFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.TransferLimit{}, &verificationdomain.UserVerification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC))
	tracker := NewService(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Limits: config.NewStaticLimitsHolder(config.DefaultLimitsConfig()),
	})

	return &limitFixture{db: db, node: node, clock: fake, tracker: tracker}
}

func (f *limitFixture) check(t *testing.T, userID snowflake.ID, amount int64) *domain.Decision {
	t.Helper()
	decision, err := f.tracker.CheckAndReserve(context.Background(), domain.CheckRequest{
		UserID: userID.String(),
		Amount: amount,
	})
	require.NoError(t, err)
	return decision
}

func TestDailyCapEnforcement(t *testing.T) {
	f := setupTracker(t)
	userID := f.node.Generate()

	// Unverified daily cap is 500,000 COP (50,000,000 centavos).
	assert.True(t, f.check(t, userID, 30_000_000).Allowed)

	denied := f.check(t, userID, 25_000_000)
	assert.False(t, denied.Allowed)
	assert.Equal(t, domain.ReasonDailyCap, denied.Reason)
	assert.Equal(t, int64(30_000_000), denied.Current)
	assert.Equal(t, int64(50_000_000), denied.Cap)

	// A smaller transfer that fits the remainder still goes through.
	assert.True(t, f.check(t, userID, 20_000_000).Allowed)

	// Cap is now exactly consumed.
	assert.False(t, f.check(t, userID, 1).Allowed)
}

func TestDailyWindowResetsLazily(t *testing.T) {
	f := setupTracker(t)
	userID := f.node.Generate()

	assert.True(t, f.check(t, userID, 50_000_000).Allowed)
	assert.False(t, f.check(t, userID, 1_000_000).Allowed)

	f.clock.Advance(24 * time.Hour)

	decision := f.check(t, userID, 30_000_000)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(30_000_000), decision.Current)

	var record domain.TransferLimit
	require.NoError(t, f.db.Where("user_id = ?", userID).First(&record).Error)
	assert.Equal(t, int64(30_000_000), record.DailyTransferred)
	assert.Equal(t, int64(1), record.DailyTransferCount)
	// The monthly accumulators carry across the day boundary.
	assert.Equal(t, int64(80_000_000), record.MonthlyTransferred)
	assert.Equal(t, int64(2), record.MonthlyTransferCount)
	assert.Equal(t, int64(80_000_000), record.LifetimeTransferred)
	assert.Equal(t, int64(2), record.LifetimeTransferCount)
}

func TestMonthlyCapEnforcement(t *testing.T) {
	f := setupTracker(t)
	userID := f.node.Generate()

	// Fill the 200,000,000 monthly cap at the daily maximum over four days.
	for day := 0; day < 4; day++ {
		assert.True(t, f.check(t, userID, 50_000_000).Allowed)
		f.clock.Advance(24 * time.Hour)
	}

	denied := f.check(t, userID, 10_000_000)
	assert.False(t, denied.Allowed)
	assert.Equal(t, domain.ReasonMonthlyCap, denied.Reason)
	assert.Equal(t, int64(200_000_000), denied.Current)
	assert.Equal(t, int64(200_000_000), denied.Cap)
}

func TestMonthlyWindowResets(t *testing.T) {
	f := setupTracker(t)
	userID := f.node.Generate()

	for day := 0; day < 4; day++ {
		assert.True(t, f.check(t, userID, 50_000_000).Allowed)
		f.clock.Advance(24 * time.Hour)
	}
	assert.False(t, f.check(t, userID, 10_000_000).Allowed)

	// March 14 -> April 1.
	f.clock.Set(time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC))

	decision := f.check(t, userID, 10_000_000)
	assert.True(t, decision.Allowed)

	var record domain.TransferLimit
	require.NoError(t, f.db.Where("user_id = ?", userID).First(&record).Error)
	assert.Equal(t, int64(10_000_000), record.MonthlyTransferred)
	assert.Equal(t, int64(210_000_000), record.LifetimeTransferred)
}

func TestCapsFollowVerificationLevel(t *testing.T) {
	f := setupTracker(t)
	userID := f.node.Generate()

	// Seed an approved level_1 verification; the fresh limit row picks the
	// level up on first use.
	require.NoError(t, f.db.Create(&verificationdomain.UserVerification{
		ID:     f.node.Generate(),
		UserID: userID,
		Level:  verificationdomain.LevelOne,
		Status: verificationdomain.StatusApproved,
	}).Error)

	// 1,000,000 COP exceeds the unverified cap but fits level_1.
	decision := f.check(t, userID, 100_000_000)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(200_000_000), decision.Cap)
}

func TestDeniedTransferDoesNotAccumulate(t *testing.T) {
	f := setupTracker(t)
	userID := f.node.Generate()

	assert.False(t, f.check(t, userID, 60_000_000).Allowed)

	var record domain.TransferLimit
	require.NoError(t, f.db.Where("user_id = ?", userID).First(&record).Error)
	assert.Equal(t, int64(0), record.DailyTransferred)
	assert.Equal(t, int64(0), record.MonthlyTransferred)

	// The full cap is still available afterwards.
	assert.True(t, f.check(t, userID, 50_000_000).Allowed)
}

func TestCheckRejectsInvalidInput(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	_, err := f.tracker.CheckAndReserve(ctx, domain.CheckRequest{UserID: "nope", Amount: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = f.tracker.CheckAndReserve(ctx, domain.CheckRequest{UserID: f.node.Generate().String(), Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.tracker.CheckAndReserve(ctx, domain.CheckRequest{UserID: f.node.Generate().String(), Amount: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
