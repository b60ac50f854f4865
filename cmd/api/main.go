package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/jmdelacruz/lotlocate/internal/adapters/crs"
	"github.com/jmdelacruz/lotlocate/internal/adapters/csvfile"
	"github.com/jmdelacruz/lotlocate/internal/adapters/http"
	natsadapter "github.com/jmdelacruz/lotlocate/internal/adapters/nats"
	"github.com/jmdelacruz/lotlocate/internal/adapters/postgres"
	"github.com/jmdelacruz/lotlocate/internal/adapters/valkey"
	"github.com/jmdelacruz/lotlocate/internal/core/ports"
	"github.com/jmdelacruz/lotlocate/internal/core/usecases"
	"github.com/jmdelacruz/lotlocate/internal/pkg/config"
	"github.com/jmdelacruz/lotlocate/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("lotlocate-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reference data source: CSV file or Postgres table
	var refRepo ports.ReferencePointRepository
	var db *postgres.DB
	switch cfg.RefData.Source {
	case "postgres":
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		refRepo = postgres.NewReferenceRepo(db)
	default:
		refRepo = csvfile.NewRepository(cfg.RefData.CSVPath)
	}

	// Cache
	var cache *valkey.Cache
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// NATS
	var publisher ports.EventPublisher
	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw connection for the WebSocket relay
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		}
	}

	// CRS transformers
	provider, err := crs.NewProvider()
	if err != nil {
		log.Fatalf("crs provider: %v", err)
	}

	// Use cases
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	refSvc := usecases.NewReferenceService(refRepo, cacheSvc)
	traverseSvc := usecases.NewTraverseService()
	plotSvc := usecases.NewPlotService(refSvc, traverseSvc, provider, publisher, cfg.CRS.DefaultEPSGString())

	deps := &http.Dependencies{
		Plots: plotSvc,
		Refs:  refSvc,
		NATS:  natsConn,
		DB:    db,
		Cache: cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "LotLocate API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
