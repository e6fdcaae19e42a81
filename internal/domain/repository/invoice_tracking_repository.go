package repository

import (
	"context"

	"github.com/jhoicas/ventas-sync/internal/domain/entity"
)

// InvoiceTrackingRepository define el puerto de persistencia del estado de
// conciliación de cabeceras. Cada escritura es una sentencia atómica; no hay
// transacción que abarque cabeceras, partidas y recibos a la vez, por lo que
// un retorno de error implica "no asumir commit parcial".
type InvoiceTrackingRepository interface {
	// Upsert inserta la cabecera si el folio no existe, o actualiza sus
	// campos si ya existe. Seguro de invocar dos veces con el mismo input.
	Upsert(ctx context.Context, inv *entity.Invoice) error
	GetByFolio(ctx context.Context, folio string) (*entity.Invoice, error)
	// UpdateEstado fija estado/acción y el id definitivo Velneo de una
	// cabecera ya registrada. Devuelve false si ninguna fila fue afectada.
	UpdateEstado(ctx context.Context, folio string, velneoID int64, estado, accion string) (bool, error)
	DeleteByFolio(ctx context.Context, folio string) error
	// ListPendientes devuelve las cabeceras en estado pendiente y acción
	// enviado, más recientes primero. Es el conjunto que alimenta la fase
	// de consulta y lo que hace el diseño recuperable tras un reinicio.
	ListPendientes(ctx context.Context, tipoDoc string, limit int) ([]*entity.Invoice, error)
	// CountByEstado agrupa cabeceras por estado (para visibilidad operativa).
	CountByEstado(ctx context.Context) (map[string]int, error)
}
