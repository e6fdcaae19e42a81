package repository

import (
	"context"
	"time"
)

// RetryRepository define el puerto del registro de reintentos por folio.
// El registro es el ancla de recuperación entre corridas: se crea o
// actualiza en cada fallo y se marca completado en el éxito, nunca se borra.
type RetryRepository interface {
	// RecordAttempt upsertea el intento con completado=false y la fecha dada.
	RecordAttempt(ctx context.Context, folio string, fecha time.Time) error
	// MarkCompleted marca completado=true. Devuelve false si el folio no
	// tenía registro previo (tolerado por el caller, no es fatal).
	MarkCompleted(ctx context.Context, folio string) (bool, error)
}
