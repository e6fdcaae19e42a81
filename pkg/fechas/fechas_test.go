package fechas_test

import (
	"testing"
	"time"

	"github.com/jhoicas/ventas-sync/pkg/fechas"
	"github.com/stretchr/testify/assert"
)

// Caso 1: Fecha con marcador localizado "a. m." → se descarta y parsea bien.
func TestNormalizar_ConMarcadorAM(t *testing.T) {
	got := fechas.Normalizar("30/04/2025 12:00:00 a. m.")
	assert.Equal(t, 2025, got.Year(), "el año debe conservarse")
	assert.Equal(t, time.April, got.Month(), "el mes debe conservarse")
	assert.Equal(t, 30, got.Day(), "el día debe conservarse")
}

// Caso 2: Fecha sin hora ni marcador → parsea directo.
func TestNormalizar_SoloFecha(t *testing.T) {
	got := fechas.Normalizar("5/1/2024")
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 5, got.Day())
}

// Caso 3: Marcador "p. m." también se descarta.
func TestNormalizar_ConMarcadorPM(t *testing.T) {
	got := fechas.Normalizar("15/09/2025 03:20:11 p. m.")
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, time.September, got.Month())
}

// Caso 4: Entrada no parseable → cae a la fecha actual, nunca a cero.
func TestNormalizar_EntradaInvalidaCaeAHoy(t *testing.T) {
	got := fechas.Normalizar("esto-no-es-fecha")
	assert.False(t, got.IsZero(), "la fecha de respaldo nunca debe ser cero")
	assert.Equal(t, time.Now().Year(), got.Year(), "el respaldo debe ser la fecha actual")
}

// Caso 5: Cadena vacía → mismo respaldo.
func TestNormalizar_VaciaCaeAHoy(t *testing.T) {
	got := fechas.Normalizar("")
	assert.False(t, got.IsZero())
}

// Caso 6: AISO produce el formato que espera el servidor (YYYY-MM-DD).
func TestAISO_FormatoISO(t *testing.T) {
	assert.Equal(t, "2025-04-30", fechas.AISO("30/04/2025 12:00:00 a. m."))
	assert.Equal(t, "2024-01-05", fechas.AISO("5/1/2024"))
}
