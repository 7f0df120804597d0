package main

import (
	"context"
	"flag"
	"log"
	"time"

	"shiftmatch/internal/config"
	"shiftmatch/internal/database/migration"
	"shiftmatch/internal/database/seeder"
	"shiftmatch/internal/infrastructure/persistence/postgres"
	"shiftmatch/internal/logger"

	"go.uber.org/zap"
)

func main() {
	seed := flag.Bool("seed", false, "insert the demo business, branch, worker and shifts after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.App.LogJSON, cfg.App.LogDebug)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := postgres.Connect(cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r := migration.Runner{Log: zl}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}

	if !*seed {
		return
	}
	s := seeder.Runner{Seeders: seeder.Defaults(cfg.App), Log: zl}
	if err := s.Run(ctx, db); err != nil {
		zl.Fatal("seed failed", zap.Error(err))
	}
}
