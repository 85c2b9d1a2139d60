package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/geosearch/internal/adapters/nats"
	"github.com/samirrijal/geosearch/internal/adapters/postgres"
	"github.com/samirrijal/geosearch/internal/adapters/valkey"
	"github.com/samirrijal/geosearch/internal/adapters/wfs"
	"github.com/samirrijal/geosearch/internal/core/domain"
	"github.com/samirrijal/geosearch/internal/core/ports"
	"github.com/samirrijal/geosearch/internal/core/usecases"
	"github.com/samirrijal/geosearch/internal/pkg/config"
	"github.com/samirrijal/geosearch/internal/pkg/logging"
	"github.com/samirrijal/geosearch/internal/workflows"
)

// auditConsumer is the durable JetStream consumer name.
const auditConsumer = "geosearch-watcher"

func main() {
	cfg, err := config.Load("geosearch-watcher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cachePort ports.CacheService
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cachePort = cache
	}

	var eventPort ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, refresh events disabled", "error", err)
	} else {
		defer pub.Close()
		eventPort = pub
	}

	// Audit trail of every executed search.
	if sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, auditConsumer); err != nil {
		slog.Warn("nats subscriber unavailable, audit disabled", "error", err)
	} else {
		defer sub.Close()
		if err := sub.SubscribeSearchExecuted(ctx, auditHandler(slog.Default())); err != nil {
			slog.Warn("subscribe search events", "error", err)
		}
	}

	features := wfs.New(cfg.WFS.ServerURL, time.Duration(cfg.WFS.TimeoutMS)*time.Millisecond)
	searchSvc := usecases.NewSearchService(features, cachePort, eventPort).WithPageSize(cfg.WFS.PageSize)
	savedSvc := usecases.NewSavedSearchService(postgres.NewSavedSearchRepo(db), searchSvc, nil)

	c, err := client.Dial(client.Options{HostPort: cfg.Temporal.HostPort})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.SavedSearchRefreshWorkflow)
	w.RegisterActivity(&workflows.RefreshActivities{SavedSearches: savedSvc})

	slog.Info("watcher worker started", "task_queue", cfg.Temporal.TaskQueue, "wfs", features.ServerURL())
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// auditHandler logs one line per executed search.
func auditHandler(logger *slog.Logger) func(ctx context.Context, event *domain.SearchEvent) error {
	return func(ctx context.Context, event *domain.SearchEvent) error {
		attrs := []any{
			"context", event.Context,
			"filter", event.Filter,
			"offset", event.Offset,
			"limit", event.Limit,
			"count", event.Count,
			"cached", event.Cached,
			"duration_ms", event.DurationMS,
		}
		if event.SavedSearchID != "" {
			attrs = append(attrs, "saved_search_id", event.SavedSearchID)
		}
		logger.InfoContext(ctx, "search executed", attrs...)
		return nil
	}
}
