package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/workorder-service/internal/api/http/handlers"
	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	WorkOrders     *handlers.WorkOrdersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireActor())

	workOrders := api.Group("/workorders")
	workOrders.Post("/", cfg.WorkOrders.Create)
	workOrders.Get("/", cfg.WorkOrders.List)
	workOrders.Get("/:id", cfg.WorkOrders.Get)
	workOrders.Patch("/:id", cfg.WorkOrders.Update)
	workOrders.Post("/:id/accept", cfg.WorkOrders.Accept)
	workOrders.Post("/:id/reject", cfg.WorkOrders.Reject)
	workOrders.Post("/:id/complete", cfg.WorkOrders.Complete)
	workOrders.Post("/:id/close", cfg.WorkOrders.Close)
	workOrders.Get("/:id/history", cfg.WorkOrders.History)
	workOrders.Get("/:id/check-access", cfg.WorkOrders.CheckAccess)
}
