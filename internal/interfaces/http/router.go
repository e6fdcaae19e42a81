package http

import (
	"github.com/gofiber/fiber/v2"
	appsync "github.com/jhoicas/ventas-sync/internal/application/sync"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Service *appsync.Service
	Tracker *appsync.Tracker
	DB      Pinger
}

// Router registra las rutas de la superficie operativa.
func Router(app *fiber.App, deps RouterDeps) {
	handler := NewSyncHandler(deps.Service, deps.Tracker, deps.DB)

	app.Get("/health", handler.Health)

	syncGroup := app.Group("/sync")
	syncGroup.Get("/stats", handler.Stats)
	syncGroup.Post("/run", handler.Run)
}
