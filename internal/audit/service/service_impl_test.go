package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/gshop/marketplace/internal/audit/domain"
	"github.com/gshop/marketplace/internal/audit/repository"
	"github.com/gshop/marketplace/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuditService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestRecordWritesRow(t *testing.T) {
	svc, db := setupAuditService(t)
	ctx := context.Background()

	actor := "admin-1"
	target := "order-42"
	err := svc.Record(ctx, domain.ActorTypeAdmin, &actor, "order.settled", "order", &target, map[string]any{
		"seller_commission_rate": 7.0,
	})
	require.NoError(t, err)

	var row domain.AuditLog
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, "order.settled", row.Action)
	assert.Equal(t, string(domain.ActorTypeAdmin), row.ActorType)
	require.NotNil(t, row.ActorID)
	assert.Equal(t, "admin-1", *row.ActorID)
	require.NotNil(t, row.TargetID)
	assert.Equal(t, "order-42", *row.TargetID)
	assert.Equal(t, 7.0, row.Metadata["seller_commission_rate"])
}

func TestRecordRequiresAction(t *testing.T) {
	svc, _ := setupAuditService(t)

	err := svc.Record(context.Background(), domain.ActorTypeSystem, nil, "  ", "order", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, db := setupAuditService(t)
	ctx := context.Background()

	// Spread rows over distinct timestamps so the keyset ordering is
	// deterministic.
	base := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		action := "invoice.issued"
		if i%2 == 1 {
			action = "invoice.voided"
		}
		require.NoError(t, db.Create(&domain.AuditLog{
			ID:         node.Generate(),
			ActorType:  string(domain.ActorTypeSystem),
			Action:     action,
			TargetType: "invoice",
			Metadata:   map[string]any{},
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	issued, err := svc.List(ctx, domain.ListAuditLogRequest{Action: "invoice.issued"})
	require.NoError(t, err)
	assert.Len(t, issued.AuditLogs, 3)

	// Page through everything two rows at a time, newest first.
	var seen []string
	req := domain.ListAuditLogRequest{Pagination: pagination.Pagination{PageSize: 2}}
	for {
		page, err := svc.List(ctx, req)
		require.NoError(t, err)
		for _, row := range page.AuditLogs {
			seen = append(seen, row.ID.String())
		}
		if !page.HasMore {
			break
		}
		req.PageToken = page.NextPageToken
	}
	assert.Len(t, seen, 5)

	for i := 1; i < len(seen); i++ {
		prev, err := snowflake.ParseString(seen[i-1])
		require.NoError(t, err)
		cur, err := snowflake.ParseString(seen[i])
		require.NoError(t, err)
		assert.Greater(t, int64(prev), int64(cur))
	}
}

func TestListRejectsBadInput(t *testing.T) {
	svc, _ := setupAuditService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, domain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageToken: "not-base64!"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)

	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = svc.List(ctx, domain.ListAuditLogRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}
