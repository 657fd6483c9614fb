package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/Inventario-sync/internal/application/inventory"
	"github.com/jhoicas/Inventario-sync/internal/application/report"
	"github.com/jhoicas/Inventario-sync/internal/application/validation"
	"github.com/jhoicas/Inventario-sync/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Controller *inventory.Controller
	Validator  *validation.Validator
	Reports    *report.UseCase
	JWTSecret  string
	// StreamHeartbeat intervalo del ": ping" en /api/events (0 = DefaultStreamHeartbeat).
	StreamHeartbeat time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	stateHandler := NewStateHandler(deps.Controller, deps.StreamHeartbeat)
	api.Get("/session", stateHandler.Session)

	// Auth (público)
	authHandler := NewAuthHandler(deps.Controller, deps.Validator)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (Bearer Token de la sesión activa)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Controller))
	protected.Post("/auth/logout", authHandler.Logout)

	protected.Get("/state", stateHandler.Get)
	protected.Get("/events", stateHandler.Stream)
	protected.Put("/filter", stateHandler.SetFilter)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.Controller)
	products.Get("/categories", productHandler.Categories)
	products.Post("/", productHandler.Create)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	reportHandler := NewReportHandler(deps.Reports)
	protected.Get("/reports/inventory.pdf", reportHandler.Inventory)
}
