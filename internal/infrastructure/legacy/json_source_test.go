package legacy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jhoicas/ventas-sync/internal/infrastructure/legacy"
	"github.com/jhoicas/ventas-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggerDePrueba() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func escribir(t *testing.T, dir, nombre, contenido string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, nombre), []byte(contenido), 0o644))
}

const docUno = `{
	"folio": "1001",
	"emp": "1",
	"clt": 500,
	"fecha": "30/04/2025 12:00:00 a. m.",
	"accion": "registrado",
	"detalles": [
		{"art": "ART-1", "cantidad": "2", "precio": "100.50"},
		{"art": "ART-2", "cantidad": "1", "precio": "50"}
	],
	"recibos": [
		{"ref_recibo": "R-9", "importe": "257.25", "tienda": "T05", "plaza": "PZ1", "ref_tipo": "TKT"}
	]
}`

// Caso 1: Un archivo con un documento suelto se lee y mapea completo.
func TestFetchDocuments_DocumentoSuelto(t *testing.T) {
	dir := t.TempDir()
	escribir(t, dir, "lote1.json", docUno)

	docs, err := legacy.NewJSONSource(dir, loggerDePrueba()).FetchDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "1001", doc.Folio)
	assert.Equal(t, 500, doc.Clt)
	require.Len(t, doc.Detalles, 2)
	assert.Equal(t, "ART-1", doc.Detalles[0].Art)
	assert.NotEmpty(t, doc.Detalles[0].DetailHash, "cada partida lleva su huella")
	require.Len(t, doc.Recibos, 1)
	assert.Equal(t, "PZ1", doc.Recibos[0].Plaza)
	assert.NotEmpty(t, doc.Hash, "el documento lleva huella de contenido")
}

// Caso 2: Un archivo con arreglo de documentos produce todos sus elementos.
func TestFetchDocuments_ArregloDeDocumentos(t *testing.T) {
	dir := t.TempDir()
	escribir(t, dir, "lote.json", `[`+docUno+`, {"folio": "1002", "detalles": []}]`)

	docs, err := legacy.NewJSONSource(dir, loggerDePrueba()).FetchDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1001", docs[0].Folio)
	assert.Equal(t, "1002", docs[1].Folio)
}

// Caso 3: Un archivo corrupto se salta; el resto del lote sobrevive.
func TestFetchDocuments_ArchivoCorruptoNoAbortaElLote(t *testing.T) {
	dir := t.TempDir()
	escribir(t, dir, "a_corrupto.json", "{esto no es json")
	escribir(t, dir, "b_bueno.json", docUno)

	docs, err := legacy.NewJSONSource(dir, loggerDePrueba()).FetchDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "1001", docs[0].Folio)
}

// Caso 4: Documentos sin folio se descartan.
func TestFetchDocuments_SinFolioSeDescarta(t *testing.T) {
	dir := t.TempDir()
	escribir(t, dir, "lote.json", `[{"detalles": []}]`)

	docs, err := legacy.NewJSONSource(dir, loggerDePrueba()).FetchDocuments()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// Caso 5: Directorio inexistente es un error del origen.
func TestFetchDocuments_DirectorioInexistente(t *testing.T) {
	_, err := legacy.NewJSONSource("/no/existe", loggerDePrueba()).FetchDocuments()
	assert.Error(t, err)
}

// Caso 6: Archivos que no son .json se ignoran.
func TestFetchDocuments_IgnoraNoJSON(t *testing.T) {
	dir := t.TempDir()
	escribir(t, dir, "notas.txt", "no es un documento")
	escribir(t, dir, "lote.json", docUno)

	docs, err := legacy.NewJSONSource(dir, loggerDePrueba()).FetchDocuments()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
