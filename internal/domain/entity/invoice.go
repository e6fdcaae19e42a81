package entity

import "time"

// Invoice representa el estado de conciliación de la cabecera de un documento
// de venta enviado al servidor Velneo.
//
// VelneoID es el id definitivo que asigna el servidor al completarse el
// procesamiento; es nil hasta entonces y una vez asignado no se reasigna.
// WaitingID es el id de la fila de espera devuelto inmediatamente por el POST.
// Hash es la huella del contenido original: se asigna al crear el registro y
// no cambia; se conserva para poder decidir reenvíos en el futuro.
type Invoice struct {
	Folio              string
	VelneoID           *int64
	WaitingID          int64
	Hash               string
	Estado             string
	Accion             string
	FechaEmision       time.Time
	FechaProcesamiento time.Time
	TotalPartidas      int
	TotalRecibos       int
	TipoDoc            string
}
