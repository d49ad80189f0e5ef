package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditrepository "github.com/gshop/marketplace/internal/audit/repository"
	auditservice "github.com/gshop/marketplace/internal/audit/service"
	"github.com/gshop/marketplace/internal/config"
	invoicedomain "github.com/gshop/marketplace/internal/invoice/domain"
	"github.com/gshop/marketplace/internal/migration"
	orderdomain "github.com/gshop/marketplace/internal/order/domain"
	configrepository "github.com/gshop/marketplace/internal/platformconfig/repository"
	configservice "github.com/gshop/marketplace/internal/platformconfig/service"
	"github.com/gshop/marketplace/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceFixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	issuer invoicedomain.Issuer
}

func setupIssuer(t *testing.T) *invoiceFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, migration.AutoMigrateAll(db))
	require.NoError(t, seed.EnsureDefaults(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  auditrepository.Provide(),
	})
	configSvc := configservice.NewService(configservice.Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     configrepository.Provide(),
		AuditSvc: auditSvc,
	})
	issuer := NewService(Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Cfg: config.Config{
			BusinessName:  "GSHOP S.A.S.",
			BusinessTaxID: "901.000.000-1",
		},
		Sequence: configSvc,
		AuditSvc: auditSvc,
	})

	return &invoiceFixture{db: db, node: node, issuer: issuer}
}

// seedCalculatedOrder writes an order that already went through settlement
// calculation and is waiting for invoices.
func (f *invoiceFixture) seedCalculatedOrder(t *testing.T) orderdomain.Order {
	t.Helper()

	sellerRate := 7.0
	buyerRate := 3.0
	order := orderdomain.Order{
		ID:                     f.node.Generate(),
		BuyerID:                f.node.Generate(),
		SellerID:               f.node.Generate(),
		Status:                 orderdomain.OrderStatusDelivered,
		CommissionStatus:       orderdomain.CommissionStatusCalculated,
		TotalAmount:            11_900_000,
		SubtotalBase:           10_000_000,
		TotalVatAmount:         1_900_000,
		SellerCommissionRate:   &sellerRate,
		PlatformFeeRate:        &buyerRate,
		SellerCommissionAmount: 833_000,
		PlatformFeeAmount:      357_000,
		SellerNetAmount:        11_067_000,
	}
	require.NoError(t, f.db.Create(&order).Error)
	return order
}

func TestIssueForOrderCreatesPair(t *testing.T) {
	f := setupIssuer(t)
	ctx := context.Background()
	order := f.seedCalculatedOrder(t)

	pair, err := f.issuer.IssueForOrder(ctx, order.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "GSHOP-00000001", pair.Commission.InvoiceNumber)
	assert.Equal(t, "GSHOP-00000002", pair.PlatformFee.InvoiceNumber)

	assert.Equal(t, invoicedomain.InvoiceTypeCommission, pair.Commission.InvoiceType)
	assert.Equal(t, invoicedomain.RecipientTypeSeller, pair.Commission.RecipientType)
	assert.Equal(t, order.SellerID, pair.Commission.RecipientID)
	assert.Equal(t, order.SellerCommissionAmount, pair.Commission.TotalAmount)

	assert.Equal(t, invoicedomain.InvoiceTypePlatformFee, pair.PlatformFee.InvoiceType)
	assert.Equal(t, invoicedomain.RecipientTypeBuyer, pair.PlatformFee.RecipientType)
	assert.Equal(t, order.BuyerID, pair.PlatformFee.RecipientID)
	assert.Equal(t, order.PlatformFeeAmount, pair.PlatformFee.TotalAmount)

	for _, inv := range []invoicedomain.Invoice{pair.Commission, pair.PlatformFee} {
		assert.Equal(t, inv.TotalAmount, inv.Subtotal+inv.VatAmount)
		assert.Equal(t, "GSHOP S.A.S.", inv.IssuerName)
	}

	var updated orderdomain.Order
	require.NoError(t, f.db.Where("id = ?", order.ID).First(&updated).Error)
	assert.Equal(t, orderdomain.CommissionStatusInvoiced, updated.CommissionStatus)
	require.NotNil(t, updated.CommissionInvoiceID)
	require.NotNil(t, updated.FeeInvoiceID)
	assert.Equal(t, pair.Commission.ID, *updated.CommissionInvoiceID)
	assert.Equal(t, pair.PlatformFee.ID, *updated.FeeInvoiceID)
}

func TestIssueForOrderReturnsExistingPair(t *testing.T) {
	f := setupIssuer(t)
	ctx := context.Background()
	order := f.seedCalculatedOrder(t)

	first, err := f.issuer.IssueForOrder(ctx, order.ID.String())
	require.NoError(t, err)
	second, err := f.issuer.IssueForOrder(ctx, order.ID.String())
	require.NoError(t, err)

	assert.Equal(t, first.Commission.ID, second.Commission.ID)
	assert.Equal(t, first.PlatformFee.ID, second.PlatformFee.ID)

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestIssueNumbersAreContiguousAcrossOrders(t *testing.T) {
	f := setupIssuer(t)
	ctx := context.Background()

	var numbers []string
	for i := 0; i < 3; i++ {
		order := f.seedCalculatedOrder(t)
		pair, err := f.issuer.IssueForOrder(ctx, order.ID.String())
		require.NoError(t, err)
		numbers = append(numbers, pair.Commission.InvoiceNumber, pair.PlatformFee.InvoiceNumber)
	}

	assert.Equal(t, []string{
		"GSHOP-00000001", "GSHOP-00000002",
		"GSHOP-00000003", "GSHOP-00000004",
		"GSHOP-00000005", "GSHOP-00000006",
	}, numbers)
}

func TestIssueForOrderBeforeCalculation(t *testing.T) {
	f := setupIssuer(t)
	ctx := context.Background()

	order := orderdomain.Order{
		ID:               f.node.Generate(),
		BuyerID:          f.node.Generate(),
		SellerID:         f.node.Generate(),
		Status:           orderdomain.OrderStatusPlaced,
		CommissionStatus: orderdomain.CommissionStatusPending,
		TotalAmount:      11_900_000,
	}
	require.NoError(t, f.db.Create(&order).Error)

	_, err := f.issuer.IssueForOrder(ctx, order.ID.String())
	assert.ErrorIs(t, err, invoicedomain.ErrPrematureInvoice)
}

func TestVoidFlipsStatusOnly(t *testing.T) {
	f := setupIssuer(t)
	ctx := context.Background()
	order := f.seedCalculatedOrder(t)

	pair, err := f.issuer.IssueForOrder(ctx, order.ID.String())
	require.NoError(t, err)

	voided, err := f.issuer.Void(ctx, pair.Commission.ID.String(), "admin-1", "billing dispute")
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusVoided, voided.Status)
	assert.NotNil(t, voided.VoidedAt)

	// Financial fields and the number survive the void untouched.
	assert.Equal(t, pair.Commission.InvoiceNumber, voided.InvoiceNumber)
	assert.Equal(t, pair.Commission.Subtotal, voided.Subtotal)
	assert.Equal(t, pair.Commission.VatAmount, voided.VatAmount)
	assert.Equal(t, pair.Commission.TotalAmount, voided.TotalAmount)

	_, err = f.issuer.Void(ctx, pair.Commission.ID.String(), "admin-1", "")
	assert.ErrorIs(t, err, invoicedomain.ErrAlreadyVoided)
}

func TestListFiltersByTypeAndOrder(t *testing.T) {
	f := setupIssuer(t)
	ctx := context.Background()
	order := f.seedCalculatedOrder(t)
	other := f.seedCalculatedOrder(t)

	_, err := f.issuer.IssueForOrder(ctx, order.ID.String())
	require.NoError(t, err)
	_, err = f.issuer.IssueForOrder(ctx, other.ID.String())
	require.NoError(t, err)

	commissions, err := f.issuer.List(ctx, invoicedomain.ListRequest{
		InvoiceType: string(invoicedomain.InvoiceTypeCommission),
	})
	require.NoError(t, err)
	assert.Len(t, commissions, 2)

	forOrder, err := f.issuer.List(ctx, invoicedomain.ListRequest{OrderID: order.ID.String()})
	require.NoError(t, err)
	assert.Len(t, forOrder, 2)
}
