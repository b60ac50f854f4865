// refload loads a survey monument CSV into the reference_points table and
// invalidates the shared cache so API replicas pick up the new data.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jmdelacruz/lotlocate/internal/adapters/csvfile"
	"github.com/jmdelacruz/lotlocate/internal/adapters/postgres"
	"github.com/jmdelacruz/lotlocate/internal/adapters/valkey"
	"github.com/jmdelacruz/lotlocate/internal/core/usecases"
	"github.com/jmdelacruz/lotlocate/internal/pkg/config"
	"github.com/jmdelacruz/lotlocate/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: refload <monuments.csv>")
	}
	path := os.Args[1]

	cfg, err := config.Load("lotlocate-refload")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	pts, err := csvfile.Parse(f)
	f.Close()
	if err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}
	if len(pts) == 0 {
		log.Fatalf("no usable reference points in %s", path)
	}
	slog.Info("parsed reference points", "file", path, "count", len(pts))

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewReferenceRepo(db)
	if err := repo.UpsertBatch(ctx, pts); err != nil {
		log.Fatalf("upsert: %v", err)
	}
	slog.Info("reference points loaded", "count", len(pts))

	// Drop the shared cache entry so running replicas reload on next request.
	if cfg.Valkey.Enabled {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, cache not invalidated", "error", err)
			return
		}
		defer cache.Close()

		refSvc := usecases.NewReferenceService(repo, cache)
		refSvc.Invalidate(ctx)
		slog.Info("reference point cache invalidated")
	}
}
