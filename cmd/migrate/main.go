// Package main is the schema migration tool for the Boutique database.
//
// Usage:
//
//	DATABASE_URL=postgres://... migrate [up|down|status|reset]
//
// With no argument it runs "up".
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/boutique/internal/logging"
	"github.com/pkordes/boutique/migrations"
)

func main() {
	logger, closer := logging.New(logging.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  "text",
		Service: "boutique-migrate",
	}, os.Stderr)
	defer closer.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, dsn); err != nil {
		logger.Error("migration failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}

	switch cmd {
	case "up":
		results, err := provider.Up(ctx)
		for _, r := range results {
			fmt.Println(r)
		}
		return err
	case "down":
		r, err := provider.Down(ctx)
		if r != nil {
			fmt.Println(r)
		}
		return err
	case "reset":
		results, err := provider.DownTo(ctx, 0)
		for _, r := range results {
			fmt.Println(r)
		}
		return err
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			applied := "pending"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-8d %-40s %s\n", s.Source.Version, s.Source.Path, applied)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q (want up, down, status or reset)", cmd)
	}
}
