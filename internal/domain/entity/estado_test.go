package entity_test

import (
	"testing"

	"github.com/jhoicas/ventas-sync/internal/domain"
	"github.com/jhoicas/ventas-sync/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

// Caso 1: Todo el vocabulario de estados es válido.
func TestValidarEstado_VocabularioCompleto(t *testing.T) {
	for _, estado := range []string{
		entity.EstadoPendiente, entity.EstadoCompletado, entity.EstadoIncompleto,
		entity.EstadoError, entity.EstadoCACompletado, entity.EstadoCAEliminado,
	} {
		assert.NoError(t, entity.ValidarEstado(estado), "estado %q debe ser válido", estado)
	}
}

// Caso 2: Un estado fuera del vocabulario se rechaza, nunca se acepta en silencio.
func TestValidarEstado_FueraDeVocabulario(t *testing.T) {
	err := entity.ValidarEstado("procesando")
	assert.ErrorIs(t, err, domain.ErrEstadoInvalido)
}

// Caso 3: Acciones válidas e inválidas.
func TestValidarAccion(t *testing.T) {
	assert.NoError(t, entity.ValidarAccion(entity.AccionRegistrado))
	assert.NoError(t, entity.ValidarAccion(entity.AccionEliminado))
	assert.ErrorIs(t, entity.ValidarAccion("archivado"), domain.ErrAccionInvalida)
}

// Caso 4: La monotonía permite avanzar y repetirse, nunca retroceder.
func TestPuedeTransicionar_Monotonia(t *testing.T) {
	assert.True(t, entity.PuedeTransicionar(entity.EstadoPendiente, entity.EstadoCompletado), "pendiente → completado avanza")
	assert.True(t, entity.PuedeTransicionar(entity.EstadoError, entity.EstadoIncompleto), "error → incompleto avanza")
	assert.True(t, entity.PuedeTransicionar(entity.EstadoCompletado, entity.EstadoCompletado), "reaplicar el mismo estado es idempotente")
	assert.True(t, entity.PuedeTransicionar(entity.EstadoCompletado, entity.EstadoCACompletado), "mismo rango se permite")

	assert.False(t, entity.PuedeTransicionar(entity.EstadoCompletado, entity.EstadoPendiente), "completado no vuelve a pendiente")
	assert.False(t, entity.PuedeTransicionar(entity.EstadoIncompleto, entity.EstadoError), "incompleto no retrocede a error")
	assert.False(t, entity.PuedeTransicionar(entity.EstadoCAEliminado, entity.EstadoCompletado), "eliminado es terminal")
}

// Caso 5: Estados desconocidos nunca transicionan en ninguna dirección.
func TestPuedeTransicionar_Desconocidos(t *testing.T) {
	assert.False(t, entity.PuedeTransicionar("fantasma", entity.EstadoCompletado))
	assert.False(t, entity.PuedeTransicionar(entity.EstadoPendiente, "fantasma"))
}
