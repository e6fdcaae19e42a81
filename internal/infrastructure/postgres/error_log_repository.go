package postgres

import (
	"context"

	"github.com/jhoicas/ventas-sync/internal/domain/repository"
	"github.com/jhoicas/ventas-sync/pkg/logger"
)

var _ repository.ErrorLogRepository = (*ErrorLogRepo)(nil)

// ErrorLogRepo implementación de ErrorLogRepository sobre la tabla
// errores_sync. Es de solo inserción y nunca propaga errores: si el insert
// falla, el mensaje queda al menos en el log estructurado.
type ErrorLogRepo struct {
	q   Querier
	log *logger.Logger
}

// NewErrorLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewErrorLogRepository(q Querier, log *logger.Logger) *ErrorLogRepo {
	return &ErrorLogRepo{q: q, log: log}
}

// Append registra un fallo en el diario.
func (r *ErrorLogRepo) Append(ctx context.Context, mensaje, origen string) {
	_, err := r.q.Exec(ctx,
		`INSERT INTO errores_sync (mensaje, origen, creado_en) VALUES ($1, $2, NOW())`,
		mensaje, origen,
	)
	if err != nil {
		r.log.Error().Err(err).Str("origen", origen).Str("mensaje", mensaje).Msg("no se pudo escribir en el diario de errores")
	}
}
