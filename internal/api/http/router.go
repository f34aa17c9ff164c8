package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-management/internal/api/http/handlers"
	"github.com/spec-kit/user-management/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Views          *handlers.ViewsHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/api/auth/token", cfg.Auth.Token)

	api := app.Group("/api/users")
	// Static paths before the :id wildcard.
	api.Get("/count", cfg.Users.Count)
	api.Get("/check-username", cfg.Users.CheckUsername)
	api.Get("/check-email", cfg.Users.CheckEmail)
	api.Get("/", cfg.Users.List)
	api.Get("/:id", cfg.Users.Get)

	mutating := api.Group("", cfg.AuthMiddleware.Handle)
	mutating.Post("/", cfg.Users.Create)
	mutating.Put("/:id", cfg.Users.Update)
	mutating.Delete("/:id", cfg.Users.Delete)

	views := app.Group("/users")
	views.Get("/new", cfg.Views.NewPage)
	views.Get("/", cfg.Views.ListPage)
	views.Post("/", cfg.Views.CreateForm)
	views.Get("/:id/edit", cfg.Views.EditPage)
	views.Post("/:id/delete", cfg.Views.DeleteForm)
	views.Get("/:id", cfg.Views.DetailPage)
	views.Post("/:id", cfg.Views.UpdateForm)
}
