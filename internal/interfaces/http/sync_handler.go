package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	appsync "github.com/jhoicas/ventas-sync/internal/application/sync"
)

// ErrorResponse cuerpo de error estándar de la API de estado.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pinger comprueba la conexión al almacén (lo satisface *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncHandler expone la superficie operativa del sincronizador: salud,
// conteos por estado y disparo manual de un ciclo.
type SyncHandler struct {
	service *appsync.Service
	tracker *appsync.Tracker
	db      Pinger
}

// NewSyncHandler construye el handler.
func NewSyncHandler(service *appsync.Service, tracker *appsync.Tracker, db Pinger) *SyncHandler {
	return &SyncHandler{service: service, tracker: tracker, db: db}
}

// Health devuelve 200 si el proceso y la conexión al almacén están vivos.
func (h *SyncHandler) Health(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Code: "DB_UNAVAILABLE", Message: err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Stats devuelve el conteo de cabeceras por estado de conciliación.
func (h *SyncHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.tracker.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Code: "STATS_FAILED", Message: err.Error(),
		})
	}
	return c.JSON(fiber.Map{"estados": counts})
}

// Run dispara un ciclo de sincronización y espera su reporte. Si ya hay un
// ciclo en curso (manual o programado) responde 409 sin encolar nada.
func (h *SyncHandler) Run(c *fiber.Ctx) error {
	report, err := h.service.RunCycle(c.Context())
	if err != nil {
		if errors.Is(err, appsync.ErrCicloEnCurso) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Code: "CYCLE_IN_PROGRESS", Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Code: "CYCLE_FAILED", Message: err.Error(),
		})
	}
	return c.JSON(report)
}
