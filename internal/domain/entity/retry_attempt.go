package entity

import "time"

// RetryAttempt registra el último intento de envío o consulta de un folio.
// Es el único mecanismo de recuperación entre corridas: un folio con
// Completado=false vuelve a ser elegible en la siguiente ejecución. El
// registro nunca se borra; el éxito solo marca Completado=true.
type RetryAttempt struct {
	Folio         string
	Completado    bool
	FechaRegistro time.Time
}
