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
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/geosearch/internal/adapters/http"
	natsadapter "github.com/samirrijal/geosearch/internal/adapters/nats"
	"github.com/samirrijal/geosearch/internal/adapters/postgres"
	"github.com/samirrijal/geosearch/internal/adapters/valkey"
	"github.com/samirrijal/geosearch/internal/adapters/wfs"
	"github.com/samirrijal/geosearch/internal/core/ports"
	"github.com/samirrijal/geosearch/internal/core/usecases"
	"github.com/samirrijal/geosearch/internal/pkg/config"
	"github.com/samirrijal/geosearch/internal/pkg/logging"
	"github.com/samirrijal/geosearch/internal/pkg/metrics"
	"github.com/samirrijal/geosearch/internal/pkg/telemetry"
	"github.com/samirrijal/geosearch/internal/workflows"
)

func main() {
	cfg, err := config.Load("geosearch-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache and events are optional; a nil pointer must not reach the
	// port interfaces.
	var cachePort ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cachePort = cache
	}

	var eventPort ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		eventPort = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Workflow engine
	var scheduler ports.RefreshScheduler
	tc, err := client.Dial(client.Options{HostPort: cfg.Temporal.HostPort})
	if err != nil {
		slog.Warn("temporal unavailable, refresh disabled", "error", err)
	} else {
		defer tc.Close()
		scheduler = workflows.NewScheduler(tc, cfg.Temporal.TaskQueue, cfg.WFS.PageSize)
	}

	features := wfs.New(cfg.WFS.ServerURL, time.Duration(cfg.WFS.TimeoutMS)*time.Millisecond)
	searchSvc := usecases.NewSearchService(features, cachePort, eventPort).WithPageSize(cfg.WFS.PageSize)
	savedSvc := usecases.NewSavedSearchService(postgres.NewSavedSearchRepo(db), searchSvc, scheduler)

	deps := &http.Dependencies{
		Search:        searchSvc,
		SavedSearches: savedSvc,
		Thumbnails:    features,
		NATS:          natsConn,
		DB:            db,
		Cache:         cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "GeoSearch API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	go reportPoolStats(ctx, db)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "wfs", features.ServerURL())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
