package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Savit10/streamsense/internal/bootstrap/config"
	"github.com/Savit10/streamsense/internal/bootstrap/database"
	"github.com/Savit10/streamsense/internal/bootstrap/logging"
	"github.com/Savit10/streamsense/internal/domain/feature"
	cacheinfra "github.com/Savit10/streamsense/internal/infrastructure/cache"
	sqliterepo "github.com/Savit10/streamsense/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/Savit10/streamsense/internal/infrastructure/persistence/sqlite/uow"
	"github.com/Savit10/streamsense/internal/ports"
	"github.com/Savit10/streamsense/internal/usecase/query"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewFeatureRepository,
			fx.As(new(ports.FeatureRepository)),
			fx.As(new(ports.FeatureReadRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideValuePolicy),
	fx.Provide(query.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideValuePolicy(cfg config.Config) feature.ValuePolicy {
	return feature.ValuePolicyFromConfig(cfg.Values)
}
