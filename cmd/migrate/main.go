// Command migrate runs the embedded SQL migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"photogram/internal/config"
	"photogram/internal/database"
	"photogram/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func usage() error {
	return fmt.Errorf("usage: migrate <up|down|status|version>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.OpenSQL(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.MigrateUp(ctx, db); err != nil {
			return err
		}
		middleware.Logger.Info("sql migrations applied")
	case "down":
		if err := database.MigrateDown(ctx, db); err != nil {
			return err
		}
		middleware.Logger.Info("rolled back one migration")
	case "status":
		return database.MigrationStatus(ctx, db)
	case "version":
		v, err := database.MigrationVersion(ctx, db)
		if err != nil {
			return err
		}
		middleware.Logger.Info("schema version", slog.Int64("version", v))
	default:
		return usage()
	}
	return nil
}
