package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ventas-sync/internal/domain/entity"
	"github.com/jhoicas/ventas-sync/internal/domain/repository"
)

var _ repository.InvoiceTrackingRepository = (*InvoiceTrackingRepo)(nil)

// InvoiceTrackingRepo implementación de InvoiceTrackingRepository sobre la
// tabla estado_factura_venta (usable con pool o tx).
type InvoiceTrackingRepo struct {
	q Querier
}

// NewInvoiceTrackingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceTrackingRepository(q Querier) *InvoiceTrackingRepo {
	return &InvoiceTrackingRepo{q: q}
}

// Upsert inserta o actualiza la cabecera por folio. El id Velneo solo se
// escribe en el update si ya viene asignado; nunca se pisa con NULL.
func (r *InvoiceTrackingRepo) Upsert(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO estado_factura_venta
			(folio, velneo_id, waiting_id, hash, estado, accion, fecha_emision, fecha_procesamiento, total_partidas, total_recibos, tipo_doc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (folio) DO UPDATE SET
			velneo_id           = COALESCE(EXCLUDED.velneo_id, estado_factura_venta.velneo_id),
			waiting_id          = EXCLUDED.waiting_id,
			hash                = EXCLUDED.hash,
			estado              = EXCLUDED.estado,
			accion              = EXCLUDED.accion,
			fecha_emision       = EXCLUDED.fecha_emision,
			fecha_procesamiento = EXCLUDED.fecha_procesamiento,
			total_partidas      = EXCLUDED.total_partidas,
			total_recibos       = EXCLUDED.total_recibos,
			tipo_doc            = EXCLUDED.tipo_doc`
	_, err := r.q.Exec(ctx, query,
		inv.Folio, inv.VelneoID, inv.WaitingID, inv.Hash, inv.Estado, inv.Accion,
		inv.FechaEmision, inv.FechaProcesamiento, inv.TotalPartidas, inv.TotalRecibos, inv.TipoDoc,
	)
	if err != nil {
		return fmt.Errorf("upsert estado_factura_venta: %w", err)
	}
	return nil
}

// GetByFolio obtiene el estado de una cabecera. Devuelve (nil, nil) si no existe.
func (r *InvoiceTrackingRepo) GetByFolio(ctx context.Context, folio string) (*entity.Invoice, error) {
	query := `
		SELECT folio, velneo_id, waiting_id, hash, estado, accion,
		       fecha_emision, fecha_procesamiento, total_partidas, total_recibos, tipo_doc
		FROM estado_factura_venta WHERE folio = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, folio).Scan(
		&inv.Folio, &inv.VelneoID, &inv.WaitingID, &inv.Hash, &inv.Estado, &inv.Accion,
		&inv.FechaEmision, &inv.FechaProcesamiento, &inv.TotalPartidas, &inv.TotalRecibos, &inv.TipoDoc,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get estado_factura_venta: %w", err)
	}
	return &inv, nil
}

// UpdateEstado fija estado, acción y el id definitivo Velneo de una cabecera.
// El id se escribe una sola vez: si la fila ya lo tiene, el valor entrante se
// ignora, nunca se reasigna.
func (r *InvoiceTrackingRepo) UpdateEstado(ctx context.Context, folio string, velneoID int64, estado, accion string) (bool, error) {
	query := `
		UPDATE estado_factura_venta
		SET velneo_id           = COALESCE(velneo_id, NULLIF($2, 0)),
		    estado              = $3,
		    accion              = $4,
		    fecha_procesamiento = NOW()
		WHERE folio = $1`
	tag, err := r.q.Exec(ctx, query, folio, velneoID, estado, accion)
	if err != nil {
		return false, fmt.Errorf("update estado_factura_venta: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByFolio elimina el estado de la cabecera. Borrar un folio inexistente
// no es error.
func (r *InvoiceTrackingRepo) DeleteByFolio(ctx context.Context, folio string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM estado_factura_venta WHERE folio = $1`, folio)
	if err != nil {
		return fmt.Errorf("delete estado_factura_venta: %w", err)
	}
	return nil
}

// ListPendientes devuelve las cabeceras pendientes enviadas, más recientes primero.
func (r *InvoiceTrackingRepo) ListPendientes(ctx context.Context, tipoDoc string, limit int) ([]*entity.Invoice, error) {
	query := `
		SELECT folio, velneo_id, waiting_id, hash, estado, accion,
		       fecha_emision, fecha_procesamiento, total_partidas, total_recibos, tipo_doc
		FROM estado_factura_venta
		WHERE estado = $1 AND accion = $2 AND tipo_doc = $3
		ORDER BY fecha_procesamiento DESC
		LIMIT $4`
	rows, err := r.q.Query(ctx, query, entity.EstadoPendiente, entity.AccionEnviado, tipoDoc, limit)
	if err != nil {
		return nil, fmt.Errorf("list pendientes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.Folio, &inv.VelneoID, &inv.WaitingID, &inv.Hash, &inv.Estado, &inv.Accion,
			&inv.FechaEmision, &inv.FechaProcesamiento, &inv.TotalPartidas, &inv.TotalRecibos, &inv.TipoDoc,
		); err != nil {
			return nil, fmt.Errorf("scan pendiente: %w", err)
		}
		out = append(out, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterar pendientes: %w", err)
	}
	return out, nil
}

// CountByEstado agrupa cabeceras por estado.
func (r *InvoiceTrackingRepo) CountByEstado(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT estado, COUNT(*) FROM estado_factura_venta GROUP BY estado`)
	if err != nil {
		return nil, fmt.Errorf("count por estado: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var estado string
		var n int
		if err := rows.Scan(&estado, &n); err != nil {
			return nil, fmt.Errorf("scan conteo: %w", err)
		}
		counts[estado] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterar conteos: %w", err)
	}
	return counts, nil
}
