// Package fechas normaliza las fechas que llegan del almacén legado como
// cadenas día/mes/año con marcador horario localizado opcional
// (ej. "30/04/2025 12:00:00 a. m.").
package fechas

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Marcadores de periodo localizados que el origen agrega a la hora y que se
// descartan antes de parsear.
var marcadores = []string{" a. m.", " p. m.", " a.m.", " p.m.", " AM", " PM"}

// Normalizar convierte una fecha cruda del origen a una fecha (sin hora).
// Precedencia documentada:
//  1. Elimina los marcadores de periodo localizados conocidos.
//  2. Parsea la parte de fecha como día/mes/año.
//  3. Ante cualquier fallo cae a la fecha actual y deja un diagnóstico.
//
// La política es "con pérdida pero siempre disponible": los callers dependen
// de recibir una fecha usable, nunca un error.
func Normalizar(cruda string) time.Time {
	if t, ok := parsear(cruda); ok {
		return t
	}
	hoy := time.Now().Truncate(24 * time.Hour)
	log.Warn().Str("fecha", cruda).Msg("no se pudo parsear la fecha, usando la fecha actual")
	return hoy
}

// AISO devuelve la fecha normalizada en formato ISO (YYYY-MM-DD), la forma
// que espera el servidor en los campos fch y fch_vto.
func AISO(cruda string) string {
	return Normalizar(cruda).Format("2006-01-02")
}

func parsear(cruda string) (time.Time, bool) {
	s := strings.TrimSpace(cruda)
	if s == "" {
		return time.Time{}, false
	}
	for _, m := range marcadores {
		s = strings.ReplaceAll(s, m, "")
	}
	// Solo interesa la parte de fecha; la hora se descarta.
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse("2/1/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
