package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	configdomain "github.com/gshop/marketplace/internal/platformconfig/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultSellerCommissionRate = 7.0
	defaultBuyerPlatformFeeRate = 3.0
	defaultInvoicePrefix        = "GSHOP"
	defaultInvoicePadding       = 8
)

// EnsureDefaults seeds the platform configuration rows the settlement and
// invoicing paths require. Existing rows are left untouched so operator
// overrides survive restarts.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureConfigRow(ctx, tx, node, configdomain.KeySellerCommissionRate,
			datatypes.JSONMap{"rate": defaultSellerCommissionRate, "type": "percentage"},
			configdomain.CategoryCommissions,
			"Percentage of the order total withheld from the seller",
		); err != nil {
			return err
		}
		if err := ensureConfigRow(ctx, tx, node, configdomain.KeyBuyerPlatformFeeRate,
			datatypes.JSONMap{"rate": defaultBuyerPlatformFeeRate, "type": "percentage"},
			configdomain.CategoryCommissions,
			"Percentage of the order total charged to the buyer",
		); err != nil {
			return err
		}
		return ensureConfigRow(ctx, tx, node, configdomain.KeyInvoiceNumberingSequence,
			configdomain.NumberingSequence{
				Prefix:  defaultInvoicePrefix,
				Current: 0,
				Padding: defaultInvoicePadding,
			}.Value(),
			configdomain.CategoryInvoicing,
			"Sequential invoice numbering state",
		)
	})
}

func ensureConfigRow(ctx context.Context, tx *gorm.DB, node *snowflake.Node, key string, value datatypes.JSONMap, category, description string) error {
	var existing configdomain.PlatformConfig
	err := tx.WithContext(ctx).Where("key = ?", key).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	row := configdomain.PlatformConfig{
		ID:          node.Generate(),
		Key:         key,
		Value:       value,
		Description: &description,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return tx.WithContext(ctx).Create(&row).Error
}
