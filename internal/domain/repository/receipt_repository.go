package repository

import (
	"context"

	"github.com/jhoicas/ventas-sync/internal/domain/entity"
)

// ReceiptRepository define el puerto de persistencia del estado de recibos,
// clave (folio, indice).
type ReceiptRepository interface {
	BatchUpsert(ctx context.Context, receipts []*entity.Receipt) (int, error)
	// UpdateEstado fija los ids Velneo y el estado de un recibo ya
	// registrado. Devuelve false si ninguna fila fue afectada.
	UpdateEstado(ctx context.Context, rec *entity.Receipt) (bool, error)
	DeleteByFolio(ctx context.Context, folio string) error
}
