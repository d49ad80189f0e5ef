package migration

import (
	auditdomain "github.com/gshop/marketplace/internal/audit/domain"
	invoicedomain "github.com/gshop/marketplace/internal/invoice/domain"
	orderdomain "github.com/gshop/marketplace/internal/order/domain"
	configdomain "github.com/gshop/marketplace/internal/platformconfig/domain"
	productdomain "github.com/gshop/marketplace/internal/product/domain"
	transferdomain "github.com/gshop/marketplace/internal/transferlimit/domain"
	verificationdomain "github.com/gshop/marketplace/internal/verification/domain"
	"gorm.io/gorm"
)

// AutoMigrateAll creates the full schema from the models. Test suites use it
// against in-memory sqlite.
func AutoMigrateAll(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&configdomain.PlatformConfig{},
		&productdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&invoicedomain.Invoice{},
		&transferdomain.TransferLimit{},
		&verificationdomain.UserVerification{},
		&auditdomain.AuditLog{},
	)
}
