package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"storyapi/internal/service"
)

// RouteOptions carries the optional parts of the HTTP surface.
type RouteOptions struct {
	// Gatherer backs GET /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	// WriteLimiter runs before every route that publishes; nil means unlimited.
	WriteLimiter fiber.Handler
	// AssetPrefix and AssetRoot serve stored assets from this process when both are set.
	AssetPrefix string
	AssetRoot   string
	// Docs mounts the Swagger UI under /swagger/.
	Docs bool
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate HTTP to service calls; the publish logic lives in service.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.PublishService, opts RouteOptions) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	if opts.Gatherer != nil {
		app.Get("/metrics", Metrics(opts.Gatherer))
	}

	if opts.Docs {
		app.Get("/swagger/*", SwaggerUI())
	}

	if opts.AssetPrefix != "" && opts.AssetRoot != "" {
		app.Static(opts.AssetPrefix, opts.AssetRoot, fiber.Static{ByteRange: true})
	}

	write := opts.WriteLimiter
	if write == nil {
		write = func(c *fiber.Ctx) error { return c.Next() }
	}

	app.Post("/stories", write, CreateStory(svc))
	app.Get("/stories/:id", GetStory(svc))
	app.Put("/stories/:id", write, UpdateStory(svc))
	app.Post("/stories/:id/pages", write, CreatePage(svc))
	app.Put("/stories/:id/pages/:pageId", write, UpdatePage(svc))

	app.Put("/users/:id", write, UpdateProfile(svc))
	app.Get("/users/:id/stories", ListUserStories(svc))
}
