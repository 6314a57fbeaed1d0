package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"coderr/config"
	logs "coderr/internal/infra/log"
	"coderr/internal/infra/persistence/migrations"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - up:     Apply every pending migration
// - down:   Roll back the most recent migration
// - status: Print applied and pending migrations

func main() {
	upCmd := flag.NewFlagSet("up", flag.ExitOnError)
	downCmd := flag.NewFlagSet("down", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)

	upTimeout := upCmd.Duration("timeout", 5*time.Minute, "Maximum time to spend applying migrations")
	downTimeout := downCmd.Duration("timeout", time.Minute, "Maximum time to spend rolling back")
	statusTimeout := statusCmd.Duration("timeout", 30*time.Second, "Maximum time to spend reading status")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var (
		cmd     *flag.FlagSet
		timeout *time.Duration
		run     func(ctx context.Context, logger *slog.Logger, db migrateDB) error
	)

	switch os.Args[1] {
	case "up":
		cmd, timeout, run = upCmd, upTimeout, func(ctx context.Context, logger *slog.Logger, db migrateDB) error {
			return migrations.Up(ctx, db.sql, logger)
		}
	case "down":
		cmd, timeout, run = downCmd, downTimeout, func(ctx context.Context, logger *slog.Logger, db migrateDB) error {
			return migrations.Down(ctx, db.sql, logger)
		}
	case "status":
		cmd, timeout, run = statusCmd, statusTimeout, func(ctx context.Context, logger *slog.Logger, db migrateDB) error {
			return migrations.Status(ctx, db.sql, logger)
		}
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err := cmd.Parse(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := execute(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, run func(ctx context.Context, logger *slog.Logger, db migrateDB) error) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.sql.Close()

	return run(ctx, logger, db)
}

func printUsage() {
	fmt.Println(`Database migration tool

Usage:
  migrate <command> [options]

Commands:
  up       Apply every pending migration
  down     Roll back the most recent migration
  status   Print applied and pending migrations

Options:
  -timeout  Maximum duration of the command

Configuration is read from the same config.yaml and environment as the API server.`)
}
