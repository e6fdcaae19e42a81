package entity

import "github.com/jhoicas/ventas-sync/internal/domain"

// Estados de conciliación contra el servidor Velneo.
const (
	EstadoPendiente    = "pendiente"     // Enviado, esperando procesamiento del servidor
	EstadoCompletado   = "completado"    // El servidor confirmó el registro definitivo
	EstadoIncompleto   = "incompleto"    // Cabecera confirmada pero partidas aún no visibles
	EstadoError        = "error"         // Sección con respuesta inválida
	EstadoCACompletado = "ca_completado" // Cabecera modificada aplicada directamente
	EstadoCAEliminado  = "ca_eliminado"  // Cabecera marcada para eliminación
)

// Acciones aplicadas sobre un documento.
const (
	AccionRegistrado = "registrado"
	AccionEnviado    = "enviado"
	AccionModificado = "modificado"
	AccionEliminado  = "eliminado"
)

// estadoRank define el orden monótono de los estados: un documento solo puede
// avanzar hacia un rango mayor o igual, nunca retroceder (ej. completado no
// vuelve a pendiente).
var estadoRank = map[string]int{
	EstadoPendiente:    1,
	EstadoError:        2,
	EstadoIncompleto:   3,
	EstadoCompletado:   4,
	EstadoCACompletado: 4,
	EstadoCAEliminado:  5,
}

// ValidarEstado verifica que el estado pertenezca al vocabulario permitido.
// Cualquier valor decodificado fuera del vocabulario es un error, nunca se
// acepta en silencio.
func ValidarEstado(estado string) error {
	if _, ok := estadoRank[estado]; !ok {
		return domain.ErrEstadoInvalido
	}
	return nil
}

// ValidarAccion verifica que la acción pertenezca al vocabulario permitido.
func ValidarAccion(accion string) error {
	switch accion {
	case AccionRegistrado, AccionEnviado, AccionModificado, AccionEliminado:
		return nil
	}
	return domain.ErrAccionInvalida
}

// PuedeTransicionar indica si el cambio desde -> hacia respeta la monotonía
// de estados. Estados desconocidos nunca transicionan.
func PuedeTransicionar(desde, hacia string) bool {
	rankDesde, okDesde := estadoRank[desde]
	rankHacia, okHacia := estadoRank[hacia]
	if !okDesde || !okHacia {
		return false
	}
	return rankHacia >= rankDesde
}
