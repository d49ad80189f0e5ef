package migration

import (
	"github.com/gshop/marketplace/internal/config"
	"github.com/gshop/marketplace/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Non-postgres deployments (dev, CI) build the schema from the
			// models; versioned migrations are postgres only.
			if err := AutoMigrateAll(conn); err != nil {
				return err
			}
			return seed.EnsureDefaults(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		return seed.EnsureDefaults(conn)
	}),
)
