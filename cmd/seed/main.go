// Seed populates a storage with the sample users, profiles, posts, comments
// and likes of the social model.
//
//	go run ./cmd/seed -dialect sqlite -dsn "file:social.db?_pragma=foreign_keys(1)"
//	go run ./cmd/seed -config seed.yaml -debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/syssam/assoc"
	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/dialect/memory"
	"github.com/syssam/assoc/dialect/sql"
	"github.com/syssam/assoc/social"
)

func main() {
	cfg, err := ParseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Oh no! Something went wrong!", "error", err)
		os.Exit(1)
	}
	logger.Info("Seeding success!")
}

// run opens the configured storage, syncs the schema and inserts the rows.
func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	drv, stats, err := open(cfg, logger)
	if err != nil {
		return err
	}
	client := social.NewClient(drv, assoc.WithLogger(logger))
	defer client.Close()

	var opts []assoc.SyncOption
	if cfg.Recreate {
		opts = append(opts, assoc.WithRecreate())
	}
	if err := client.Sync(ctx, opts...); err != nil {
		return fmt.Errorf("sync schema: %w", err)
	}
	if err := Seed(ctx, client, logger); err != nil {
		return err
	}
	if stats != nil {
		logger.Info("query stats", "stats", stats.Stats().String())
	}
	return nil
}

// open returns the driver named by cfg. The stats are nil unless enabled.
func open(cfg Config, logger *slog.Logger) (dialect.Driver, *sql.QueryStats, error) {
	if cfg.Dialect == dialect.Memory {
		return memory.New(), nil, nil
	}
	drv, err := sql.Open(cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.Dialect, err)
	}
	var stats *sql.QueryStats
	if cfg.Stats {
		sd := sql.NewStatsDriver(drv,
			sql.WithSlowThreshold(cfg.SlowThreshold),
			sql.WithSlowQueryLog(logger),
		)
		drv, stats = sd.Driver, sd.QueryStats()
	}
	if cfg.Debug {
		return sql.NewDebugDriver(drv, logger), stats, nil
	}
	return drv, stats, nil
}
