package main

import (
	"database/sql"

	"coderr/config"

	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
)

type migrateDB struct {
	sql *sql.DB
}

// openDB returns the primary pool; migrations never run against replicas.
func openDB(cfg *config.Config) (migrateDB, error) {
	gormDB, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return migrateDB{}, errors.Wrap(err, "failed to create PostgreSQL client")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return migrateDB{}, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	return migrateDB{sql: sqlDB}, nil
}
