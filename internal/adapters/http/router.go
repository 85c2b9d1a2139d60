package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geosearch/internal/core/domain"
	"github.com/samirrijal/geosearch/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// LegacyFilterSunset is when GET /v1/filter is removed.
var LegacyFilterSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/v1/filter", SunsetDate: LegacyFilterSunset, Alternative: "/v1/filters/imagery"},
	}))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Filter compilation
	v1.Post("/filters/imagery", BuildFilterHandler(deps, domain.ContextImagery))
	v1.Post("/filters/video", BuildFilterHandler(deps, domain.ContextVideo))
	v1.Get("/coordinates/recognize", RecognizeHandler(deps))
	v1.Get("/filter", LegacyFilterHandler(deps))

	// Feature search (calls the feature service)
	v1.Post("/imagery/search", timeout.NewWithContext(SearchHandler(deps, domain.ContextImagery), requestTimeout))
	v1.Post("/videos/search", timeout.NewWithContext(SearchHandler(deps, domain.ContextVideo), requestTimeout))
	v1.Get("/imagery/thumbnail", ThumbnailHandler(deps))

	// Saved searches
	v1.Post("/searches", timeout.NewWithContext(CreateSavedSearchHandler(deps), requestTimeout))
	v1.Get("/searches", timeout.NewWithContext(ListSavedSearchesHandler(deps), requestTimeout))
	v1.Get("/searches/:id", timeout.NewWithContext(GetSavedSearchHandler(deps), requestTimeout))
	v1.Delete("/searches/:id", timeout.NewWithContext(DeleteSavedSearchHandler(deps), requestTimeout))
	v1.Post("/searches/:id/run", timeout.NewWithContext(RunSavedSearchHandler(deps), requestTimeout))
	v1.Post("/searches/:id/refresh", timeout.NewWithContext(RefreshSavedSearchHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, DefaultSpecPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
