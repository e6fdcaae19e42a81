package repository

import (
	"context"

	"github.com/jhoicas/ventas-sync/internal/domain/entity"
)

// LineItemRepository define el puerto de persistencia del estado de partidas,
// clave (folio, indice).
type LineItemRepository interface {
	// BatchUpsert inserta o actualiza las partidas y devuelve cuántas filas
	// se escribieron realmente, para que el orquestador pueda reportarlo.
	BatchUpsert(ctx context.Context, items []*entity.LineItem) (int, error)
	// UpdateEstado fija el id Velneo y el estado de una partida ya
	// registrada. Devuelve false si ninguna fila fue afectada.
	UpdateEstado(ctx context.Context, folio string, indice int, velneoID int64, estado, accion string) (bool, error)
	DeleteByFolio(ctx context.Context, folio string) error
}
