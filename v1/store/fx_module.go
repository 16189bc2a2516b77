package store

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/postgres"
)

// FXModule provides the PostgreSQL repository as Repository. It requires
// postgres.FXModule and migrates the schema on start when postgres.Config.AutoMigrate
// is set.
var FXModule = fx.Module("store",
	fx.Provide(
		NewGormRepository,
		fx.Annotate(
			func(r *GormRepository) Repository { return r },
			fx.As(new(Repository)),
		),
	),
	fx.Invoke(RegisterMigrations),
)

// MemoryFXModule provides the in-process repository as Repository.
var MemoryFXModule = fx.Module("store-memory",
	fx.Provide(
		fx.Annotate(
			NewMemoryRepository,
			fx.As(new(Repository)),
		),
	),
)

// RegisterMigrations runs AutoMigrate for all models on application start.
func RegisterMigrations(lc fx.Lifecycle, repo *GormRepository, cfg postgres.Config, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.AutoMigrate {
				return nil
			}
			if err := repo.Migrate(ctx); err != nil {
				log.Error("Schema migration failed", err, nil)
				return err
			}
			log.Info("Schema migrated", nil, map[string]interface{}{"tables": len(Models())})
			return nil
		},
	})
}
