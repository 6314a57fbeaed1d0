package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"coderr/config"
	"coderr/internal/domain/lifecycle"
	"coderr/internal/errors"
	"coderr/internal/infra/persistence/migrations"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the primary (and any replicas), pings on start and applies pending migrations when enabled.
func New(params Params) (*gorm.DB, error) {
	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	// Multi-statement writes go through TransactionManager.Execute.
	db = db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	dbCfg := params.Config.Database
	if dbCfg == nil {
		dbCfg = &config.DatabaseConfig{}
	}
	monitor := &poolMonitor{logger: params.Logger, stats: sqlDB.Stats, warnAfter: dbCfg.PoolWaitWarnThreshold}
	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if dbCfg.AutoMigrate {
				if err := migrations.Up(startCtx, sqlDB, params.Logger); err != nil {
					return errors.Wrap(err, "failed to migrate PostgreSQL schema")
				}
			}

			if dbCfg.PoolMonitorInterval > 0 && params.Logger != nil {
				go monitor.run(monitorCtx, dbCfg.PoolMonitorInterval)
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return closeDB(sqlDB)
		},
	})

	return db, nil
}

func closeDB(sqlDB *sql.DB) error {
	return errors.Wrap(sqlDB.Close(), "failed to close PostgreSQL")
}
