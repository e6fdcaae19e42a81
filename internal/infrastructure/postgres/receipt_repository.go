package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ventas-sync/internal/domain/entity"
	"github.com/jhoicas/ventas-sync/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo implementación de ReceiptRepository sobre la tabla
// estado_recibo_venta, clave (folio, indice).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// BatchUpsert inserta o actualiza los recibos y devuelve cuántas filas se
// escribieron.
func (r *ReceiptRepo) BatchUpsert(ctx context.Context, receipts []*entity.Receipt) (int, error) {
	query := `
		INSERT INTO estado_recibo_venta
			(folio, indice, velneo_id, cta_cor_id, dtl_doc_cob_id, rbo_cob_id, num_ref, estado, accion, fecha_emision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (folio, indice) DO UPDATE SET
			velneo_id      = COALESCE(EXCLUDED.velneo_id, estado_recibo_venta.velneo_id),
			cta_cor_id     = COALESCE(EXCLUDED.cta_cor_id, estado_recibo_venta.cta_cor_id),
			dtl_doc_cob_id = COALESCE(EXCLUDED.dtl_doc_cob_id, estado_recibo_venta.dtl_doc_cob_id),
			rbo_cob_id     = COALESCE(EXCLUDED.rbo_cob_id, estado_recibo_venta.rbo_cob_id),
			num_ref        = EXCLUDED.num_ref,
			estado         = EXCLUDED.estado,
			accion         = EXCLUDED.accion,
			fecha_emision  = EXCLUDED.fecha_emision`
	escritos := 0
	for _, rec := range receipts {
		_, err := r.q.Exec(ctx, query,
			rec.Folio, rec.Indice, rec.VelneoID, rec.CtaCorID, rec.DtlDocCobID, rec.RboCobID,
			rec.NumRef, rec.Estado, rec.Accion, rec.FechaEmision,
		)
		if err != nil {
			return escritos, fmt.Errorf("upsert estado_recibo_venta %s[%d]: %w", rec.Folio, rec.Indice, err)
		}
		escritos++
	}
	return escritos, nil
}

// UpdateEstado fija los ids Velneo y el estado de un recibo ya registrado.
func (r *ReceiptRepo) UpdateEstado(ctx context.Context, rec *entity.Receipt) (bool, error) {
	query := `
		UPDATE estado_recibo_venta
		SET velneo_id      = COALESCE($3, velneo_id),
		    cta_cor_id     = COALESCE($4, cta_cor_id),
		    dtl_doc_cob_id = COALESCE($5, dtl_doc_cob_id),
		    rbo_cob_id     = COALESCE($6, rbo_cob_id),
		    estado         = $7,
		    accion         = $8
		WHERE folio = $1 AND indice = $2`
	tag, err := r.q.Exec(ctx, query,
		rec.Folio, rec.Indice, rec.VelneoID, rec.CtaCorID, rec.DtlDocCobID, rec.RboCobID,
		rec.Estado, rec.Accion,
	)
	if err != nil {
		return false, fmt.Errorf("update estado_recibo_venta: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByFolio elimina todos los recibos del folio.
func (r *ReceiptRepo) DeleteByFolio(ctx context.Context, folio string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM estado_recibo_venta WHERE folio = $1`, folio)
	if err != nil {
		return fmt.Errorf("delete estado_recibo_venta: %w", err)
	}
	return nil
}
