package migrate

import (
	"context"

	"github.com/bedtex/dispatch-backend/pkg/config"
	"github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations on boot in dev environments when the
// auto-migrate flag is on. Prod deploys run migrations explicitly via cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || client == nil {
		return nil
	}
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	gormDB := client.DB()
	if gormDB == nil {
		return nil
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "dir", DefaultDir), "auto-migrate enabled; applying pending migrations")
	}
	return Run(ctx, sqlDB, DefaultDir, "up")
}
