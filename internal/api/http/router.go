package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fluxboard/internal/api/http/handlers"
	"github.com/spec-kit/fluxboard/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Flux           *handlers.FluxHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	flux := app.Group("/flux", cfg.AuthMiddleware.Handle, auth.RequireRole())
	flux.Get("/", cfg.Flux.List)
	flux.Get("/overview", cfg.Flux.Overview)
	flux.Get("/export", cfg.Flux.Export)
	flux.Get("/:id", cfg.Flux.Detail)
	flux.Patch("/:id/state", cfg.Flux.ChangeState)
	flux.Patch("/:id/assignee", cfg.Flux.Assign)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole())
	users.Get("/assignable", cfg.Users.Assignable)
}
