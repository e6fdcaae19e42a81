package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/ventas-sync/internal/domain/repository"
)

var _ repository.RetryRepository = (*RetryRepo)(nil)

// RetryRepo implementación de RetryRepository sobre la tabla reintentos_venta.
// Una fila por folio: cada fallo la reabre, el éxito la marca completada.
type RetryRepo struct {
	q Querier
}

// NewRetryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRetryRepository(q Querier) *RetryRepo {
	return &RetryRepo{q: q}
}

// RecordAttempt upsertea el intento con completado=false y la fecha dada.
func (r *RetryRepo) RecordAttempt(ctx context.Context, folio string, fecha time.Time) error {
	query := `
		INSERT INTO reintentos_venta (folio, completado, fecha_registro)
		VALUES ($1, FALSE, $2)
		ON CONFLICT (folio) DO UPDATE SET
			completado     = FALSE,
			fecha_registro = EXCLUDED.fecha_registro`
	_, err := r.q.Exec(ctx, query, folio, fecha)
	if err != nil {
		return fmt.Errorf("upsert reintentos_venta: %w", err)
	}
	return nil
}

// MarkCompleted marca completado=true. Devuelve false si el folio no tenía
// registro previo.
func (r *RetryRepo) MarkCompleted(ctx context.Context, folio string) (bool, error) {
	tag, err := r.q.Exec(ctx, `UPDATE reintentos_venta SET completado = TRUE WHERE folio = $1`, folio)
	if err != nil {
		return false, fmt.Errorf("update reintentos_venta: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
