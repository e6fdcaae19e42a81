package velneo

import (
	"testing"

	"github.com/jhoicas/ventas-sync/internal/domain/source"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docDePrueba() *source.SalesDocument {
	return &source.SalesDocument{
		Folio:  "1001",
		Emp:    "1",
		EmpDiv: "1",
		Clt:    500,
		Fpg:    2,
		Cmr:    3,
		Ser:    7,
		Alm:    "A01",
		Pai:    "MX",
		Hor:    930,
		Fecha:  "30/04/2025 12:00:00 a. m.",
		Detalles: []source.SalesDetail{
			{
				Art:      "ART-1",
				Cantidad: decimal.NewFromInt(2),
				Precio:   decimal.NewFromFloat(100.50),
				NDescto1: decimal.NewFromFloat(5.25),
				NDescto2: decimal.NewFromFloat(1.25),
				Alm:      "A01",
				Emp:      "1",
				EmpDiv:   "1",
				Clt:      500,
				Hor:      930,
			},
			{
				Art:      "ART-2",
				Cantidad: decimal.NewFromInt(1),
				Precio:   decimal.NewFromInt(50),
			},
		},
		Recibos: []source.SalesReceipt{
			{
				RefRecibo: "R-9",
				Importe:   decimal.NewFromFloat(257.25),
				CajaBco:   4,
				Tienda:    "T05",
				Plaza:     "PZ1",
				RefTipo:   "TKT",
				Hora:      "09:30",
				Fpg:       2,
			},
		},
	}
}

// Caso 1: La fecha cruda del origen se normaliza a ISO en fch y fch_vto.
func TestBuildCreatePayload_FechaISO(t *testing.T) {
	p := buildCreatePayload(docDePrueba())
	assert.Equal(t, "2025-04-30", p.Fch)
	assert.Equal(t, "2025-04-30", p.FchVto, "fch_vto usa la misma fecha de emisión")
}

// Caso 2: El precio enviado es base más los dos componentes de descuento.
func TestBuildCreatePayload_PrecioConDescuentos(t *testing.T) {
	p := buildCreatePayload(docDePrueba())
	require.Len(t, p.Detalles, 2)
	assert.InDelta(t, 107.0, p.Detalles[0].Pre, 0.0001, "pre = precio + n_descto_1 + n_descto_2")
	assert.InDelta(t, 50.0, p.Detalles[1].Pre, 0.0001)
}

// Caso 3: Partidas y recibos llevan índice 1-based en orden de origen.
func TestBuildCreatePayload_IndicesUnoBasados(t *testing.T) {
	p := buildCreatePayload(docDePrueba())
	require.Len(t, p.Detalles, 2)
	assert.Equal(t, 1, p.Detalles[0].Indice)
	assert.Equal(t, 2, p.Detalles[1].Indice)
	require.Len(t, p.Recibos, 1)
	assert.Equal(t, 1, p.Recibos[0].Indice)
}

// Caso 4: El num_doc del recibo es la clave compuesta plaza-tienda-tipo-ref.
func TestBuildCreatePayload_NumDocCompuestoDeRecibo(t *testing.T) {
	p := buildCreatePayload(docDePrueba())
	require.Len(t, p.Recibos, 1)
	assert.Equal(t, "PZ1-T05-TKT-R-9", p.Recibos[0].NumDoc)
	assert.Equal(t, 3, p.Recibos[0].Ser, "los recibos siempre van con serie 3")
}

// Caso 5: Los campos fijos del protocolo se emiten siempre con el mismo valor.
func TestBuildCreatePayload_CamposFijos(t *testing.T) {
	p := buildCreatePayload(docDePrueba())
	assert.Equal(t, 1, p.EntRelTip)
	assert.Equal(t, 1, p.MonC)
	assert.Equal(t, 1, p.Cot)
	assert.Equal(t, 1, p.Trm)
	assert.Equal(t, 1, p.Dum)
	assert.Equal(t, "1", p.Fac)
	assert.Equal(t, 1, p.Off)
	assert.Equal(t, 0, p.PreConIvaInc)
	assert.Equal(t, 0, p.PorDto)
	require.NotEmpty(t, p.Detalles)
	assert.Equal(t, "C", p.Detalles[0].MovTip)
	assert.Equal(t, 1, p.Detalles[0].CalArr)
	assert.Equal(t, 1, p.Detalles[0].UndMed)
}

// Caso 6: La cabecera copia los identificadores del documento origen.
func TestBuildCreatePayload_Cabecera(t *testing.T) {
	p := buildCreatePayload(docDePrueba())
	assert.Equal(t, "1001", p.NumDoc)
	assert.Equal(t, 500, p.Clt)
	assert.Equal(t, 7, p.Ser)
	assert.Equal(t, "A01", p.Alm)
}
