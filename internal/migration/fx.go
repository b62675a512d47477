package migration

import (
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"github.com/subwavelabs/subwave/internal/config"
	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
	"github.com/subwavelabs/subwave/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite deployments rely on gorm's schema sync
			if err := conn.AutoMigrate(
				&catalogdomain.PeriodPrice{},
				&catalogdomain.TrafficTier{},
				&catalogdomain.ServerResource{},
				&catalogdomain.DeviceRate{},
				&promodomain.PromoGroup{},
				&promodomain.Subscriber{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultCatalog(conn)
	}),
)
