// Package migrations owns the database schema as embedded goose SQL files.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// FS returns the migration files rooted at their directory.
func FS() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}

	return sub
}

func newProvider(db *sql.DB) (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS())
	if err != nil {
		return nil, errors.Wrap(err, "create goose provider")
	}

	return provider, nil
}

// Up applies all pending migrations.
func Up(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Wrap(err, "run migrations")
	}

	for _, r := range results {
		logger.InfoContext(ctx, "Migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}

	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return errors.Wrap(err, "roll back migration")
	}

	if result != nil {
		logger.InfoContext(ctx, "Migration rolled back", slog.Int64("version", result.Source.Version))
	}

	return nil
}

// Status logs the applied state of every known migration.
func Status(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return errors.Wrap(err, "read migration status")
	}

	for _, s := range statuses {
		logger.InfoContext(ctx, "Migration status",
			slog.Int64("version", s.Source.Version),
			slog.String("file", s.Source.Path),
			slog.String("state", string(s.State)),
		)
	}

	return nil
}
