package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrEstadoInvalido = errors.New("estado fuera del vocabulario permitido")
	ErrAccionInvalida = errors.New("acción fuera del vocabulario permitido")
	// ErrRegresionEstado marca una transición que haría retroceder el estado.
	// No aborta el ciclo: el tracker lo deja en el log y descarta el cambio.
	ErrRegresionEstado = errors.New("transición de estado regresiva no permitida")
)
