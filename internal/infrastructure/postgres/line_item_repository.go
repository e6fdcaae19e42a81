package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ventas-sync/internal/domain/entity"
	"github.com/jhoicas/ventas-sync/internal/domain/repository"
)

var _ repository.LineItemRepository = (*LineItemRepo)(nil)

// LineItemRepo implementación de LineItemRepository sobre la tabla
// estado_partida_venta, clave (folio, indice).
type LineItemRepo struct {
	q Querier
}

// NewLineItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLineItemRepository(q Querier) *LineItemRepo {
	return &LineItemRepo{q: q}
}

// BatchUpsert inserta o actualiza las partidas una a una y devuelve cuántas
// filas se escribieron. Un error corta el lote; las filas anteriores quedan
// escritas (el upsert posterior las reescribe sin daño).
func (r *LineItemRepo) BatchUpsert(ctx context.Context, items []*entity.LineItem) (int, error) {
	query := `
		INSERT INTO estado_partida_venta
			(folio, indice, velneo_id, ref, art, detail_hash, estado, accion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (folio, indice) DO UPDATE SET
			velneo_id   = COALESCE(EXCLUDED.velneo_id, estado_partida_venta.velneo_id),
			ref         = EXCLUDED.ref,
			art         = EXCLUDED.art,
			detail_hash = EXCLUDED.detail_hash,
			estado      = EXCLUDED.estado,
			accion      = EXCLUDED.accion`
	escritas := 0
	for _, it := range items {
		_, err := r.q.Exec(ctx, query,
			it.Folio, it.Indice, it.VelneoID, it.Ref, it.Art, it.DetailHash, it.Estado, it.Accion,
		)
		if err != nil {
			return escritas, fmt.Errorf("upsert estado_partida_venta %s[%d]: %w", it.Folio, it.Indice, err)
		}
		escritas++
	}
	return escritas, nil
}

// UpdateEstado fija el id Velneo y el estado de una partida ya registrada.
func (r *LineItemRepo) UpdateEstado(ctx context.Context, folio string, indice int, velneoID int64, estado, accion string) (bool, error) {
	query := `
		UPDATE estado_partida_venta
		SET velneo_id = COALESCE(NULLIF($3, 0), velneo_id),
		    estado    = $4,
		    accion    = $5
		WHERE folio = $1 AND indice = $2`
	tag, err := r.q.Exec(ctx, query, folio, indice, velneoID, estado, accion)
	if err != nil {
		return false, fmt.Errorf("update estado_partida_venta: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByFolio elimina todas las partidas del folio.
func (r *LineItemRepo) DeleteByFolio(ctx context.Context, folio string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM estado_partida_venta WHERE folio = $1`, folio)
	if err != nil {
		return fmt.Errorf("delete estado_partida_venta: %w", err)
	}
	return nil
}
