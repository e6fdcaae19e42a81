package repository

import "context"

// ErrorLogRepository define el puerto del diario de fallos (solo inserción).
// Append nunca devuelve error: un fallo al registrar no debe abortar la
// operación que lo rodea; la implementación lo deja en el log estructurado.
type ErrorLogRepository interface {
	Append(ctx context.Context, mensaje, origen string)
}
