package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gearmart-backend/pkg/config"
	"github.com/angelmondragon/gearmart-backend/pkg/db"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in dev
// mode and the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DialectFor(cfg.DB.Driver), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// DialectFor maps the configured DB driver to the matching goose dialect.
func DialectFor(driver string) string {
	if driver == "sqlite" {
		return "sqlite3"
	}
	return "postgres"
}
