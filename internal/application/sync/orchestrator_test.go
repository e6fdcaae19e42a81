package sync_test

import (
	"context"
	"testing"

	appsync "github.com/jhoicas/ventas-sync/internal/application/sync"
	"github.com/jhoicas/ventas-sync/internal/domain/entity"
	"github.com/jhoicas/ventas-sync/internal/domain/source"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de los puertos hacia el servidor
// ──────────────────────────────────────────────────────────────────────────────

type fakeSubmitter struct {
	siguienteWaitingID int64
	fallar             map[string]string // folio -> mensaje de error
	enviados           []string
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{siguienteWaitingID: 77, fallar: make(map[string]string)}
}

func (f *fakeSubmitter) Submit(_ context.Context, doc *source.SalesDocument) *appsync.SubmitResult {
	f.enviados = append(f.enviados, doc.Folio)
	result := &appsync.SubmitResult{}
	if msg, ok := f.fallar[doc.Folio]; ok {
		result.Failed = append(result.Failed, appsync.FailureEntry{Folio: doc.Folio, Status: 500, ErrorMsg: msg})
		return result
	}
	ack := appsync.AckEntry{
		Folio:         doc.Folio,
		WaitingID:     f.siguienteWaitingID,
		FechaEmision:  doc.Fecha,
		TotalPartidas: len(doc.Detalles),
		TotalRecibos:  len(doc.Recibos),
		Hash:          doc.Hash,
	}
	for i, d := range doc.Detalles {
		ack.Partidas = append(ack.Partidas, appsync.LineItemAck{Indice: i + 1, Art: d.Art, Ref: d.Ref})
	}
	for i, r := range doc.Recibos {
		ack.Recibos = append(ack.Recibos, appsync.ReceiptAck{Indice: i + 1, NumRef: r.RefRecibo})
	}
	f.siguienteWaitingID++
	result.Success = append(result.Success, ack)
	return result
}

type fakePoller struct {
	respuestas  map[string]appsync.CompletionEntry
	fallar      map[string]string
	consultados []string
}

func newFakePoller() *fakePoller {
	return &fakePoller{
		respuestas: make(map[string]appsync.CompletionEntry),
		fallar:     make(map[string]string),
	}
}

func (f *fakePoller) Poll(_ context.Context, pending appsync.PendingDocument) *appsync.PollResult {
	f.consultados = append(f.consultados, pending.Folio)
	result := &appsync.PollResult{}
	if msg, ok := f.fallar[pending.Folio]; ok {
		result.Failed = append(result.Failed, appsync.FailureEntry{Folio: pending.Folio, ErrorMsg: msg})
		return result
	}
	if comp, ok := f.respuestas[pending.Folio]; ok {
		result.Success = append(result.Success, comp)
		return result
	}
	result.Failed = append(result.Failed, appsync.FailureEntry{Folio: pending.Folio, ErrorMsg: "sin respuesta preparada"})
	return result
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture del orquestador completo sobre fakes
// ──────────────────────────────────────────────────────────────────────────────

type orchFixture struct {
	orch       *appsync.Orchestrator
	tracker    *trackerFixture
	submitter  *fakeSubmitter
	poller     *fakePoller
	reintentos *fakeReintentos
	errores    *fakeErrores
}

func newOrchFixture() *orchFixture {
	tfx := newTrackerFixture()
	sub := newFakeSubmitter()
	pol := newFakePoller()
	ret := newFakeReintentos()
	errs := &fakeErrores{}
	orch := appsync.NewOrchestrator(sub, pol, tfx.tracker, ret, errs, appsync.Options{
		WaitInterval: 0, // sin pausa en tests
		PendingLimit: 100,
	}, loggerDePrueba())
	return &orchFixture{orch: orch, tracker: tfx, submitter: sub, poller: pol, reintentos: ret, errores: errs}
}

func documentoDeVenta(folio string) *source.SalesDocument {
	doc := &source.SalesDocument{
		Folio:  folio,
		Emp:    "1",
		Clt:    500,
		Fecha:  "30/04/2025 12:00:00 a. m.",
		Accion: entity.AccionRegistrado,
		Detalles: []source.SalesDetail{
			{Art: "ART-1", Cantidad: decimal.NewFromInt(2), Precio: decimal.NewFromInt(100)},
			{Art: "ART-2", Cantidad: decimal.NewFromInt(1), Precio: decimal.NewFromInt(50)},
		},
		Recibos: []source.SalesReceipt{
			{RefRecibo: "R-9", Importe: decimal.NewFromInt(250)},
		},
	}
	doc.Hash = source.ContentHash(doc)
	return doc
}

func completadoPara(folio string, velneoID int64, partidas int) appsync.CompletionEntry {
	comp := appsync.CompletionEntry{
		Folio:    folio,
		VelneoID: velneoID,
		Estado:   entity.EstadoCompletado,
		Accion:   entity.AccionRegistrado,
	}
	for i := 1; i <= partidas; i++ {
		comp.Partidas = append(comp.Partidas, appsync.LineItemCompletion{
			Indice:   i,
			VelneoID: velneoID + int64(i),
			Estado:   entity.EstadoCompletado,
		})
	}
	return comp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: Ciclo completo feliz: envío, consulta y conciliación en una corrida.
func TestRun_CicloCompletoFeliz(t *testing.T) {
	fx := newOrchFixture()
	fx.poller.respuestas["1001"] = completadoPara("1001", 900, 2)

	report, err := fx.orch.Run(context.Background(), []*source.SalesDocument{documentoDeVenta("1001")})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Enviados)
	assert.Equal(t, 0, report.EnviosFallidos)
	assert.Equal(t, 1, report.Consultados)
	assert.Equal(t, 0, report.ConsultasFallidas)
	assert.NotEmpty(t, report.RunID)

	inv := fx.tracker.cabeceras.data["1001"]
	require.NotNil(t, inv)
	assert.Equal(t, entity.EstadoCompletado, inv.Estado)
	require.NotNil(t, inv.VelneoID)
	assert.Equal(t, int64(900), *inv.VelneoID)
	assert.Equal(t, int64(77), inv.WaitingID)

	p2 := fx.tracker.partidas.data["1001"][2]
	require.NotNil(t, p2)
	assert.Equal(t, entity.EstadoCompletado, p2.Estado)

	assert.Empty(t, fx.errores.mensajes, "el ciclo feliz no deja rastro en el diario")
}

// Caso 2: Fallo de envío: diario de errores + registro de reintento, y el
// ciclo termina sin error.
func TestRun_FalloDeEnvioRegistraReintento(t *testing.T) {
	fx := newOrchFixture()
	fx.submitter.fallar["1001"] = "request fallido con status 500"

	report, err := fx.orch.Run(context.Background(), []*source.SalesDocument{documentoDeVenta("1001")})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Enviados)
	assert.Equal(t, 1, report.EnviosFallidos)

	ret := fx.reintentos.data["1001"]
	require.NotNil(t, ret, "el folio fallido debe quedar en el registro de reintentos")
	assert.False(t, ret.Completado)
	assert.Equal(t, 2025, ret.FechaRegistro.Year(), "la fecha cruda se normaliza al registrar")

	require.NotEmpty(t, fx.errores.mensajes)
	assert.Contains(t, fx.errores.mensajes[0], "1001")
}

// Caso 3: El fallo de un documento no contamina al resto del lote.
func TestRun_AislamientoDeFallosEnElLote(t *testing.T) {
	fx := newOrchFixture()
	fx.submitter.fallar["1002"] = "timeout"
	fx.poller.respuestas["1001"] = completadoPara("1001", 900, 2)

	docs := []*source.SalesDocument{documentoDeVenta("1001"), documentoDeVenta("1002")}
	report, err := fx.orch.Run(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Enviados)
	assert.Equal(t, 1, report.EnviosFallidos)
	assert.Equal(t, entity.EstadoCompletado, fx.tracker.cabeceras.data["1001"].Estado)
	assert.NotContains(t, fx.tracker.cabeceras.data, "1002", "el folio fallido no registra estado")
}

// Caso 4: Consulta fallida: el folio sigue pendiente y vuelve a ser elegible
// en la siguiente corrida (sin corte de reintentos).
func TestRun_ConsultaFallidaMantienePendiente(t *testing.T) {
	fx := newOrchFixture()
	fx.poller.fallar["1001"] = "CA ausente"

	report, err := fx.orch.Run(context.Background(), []*source.SalesDocument{documentoDeVenta("1001")})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Enviados)
	assert.Equal(t, 1, report.ConsultasFallidas)
	assert.Equal(t, entity.EstadoPendiente, fx.tracker.cabeceras.data["1001"].Estado)
	require.NotNil(t, fx.reintentos.data["1001"])
	assert.False(t, fx.reintentos.data["1001"].Completado)

	// Segunda corrida sin documentos nuevos: el pendiente persistido se
	// vuelve a consultar, ahora con éxito.
	delete(fx.poller.fallar, "1001")
	fx.poller.respuestas["1001"] = completadoPara("1001", 900, 2)

	report2, err := fx.orch.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report2.Consultados)
	assert.Equal(t, entity.EstadoCompletado, fx.tracker.cabeceras.data["1001"].Estado)
	assert.True(t, fx.reintentos.data["1001"].Completado, "el éxito cierra el reintento")
}

// Caso 5: Documentos con acción modificado y eliminado siguen la vía directa.
func TestRun_ModificadosYEliminados(t *testing.T) {
	fx := newOrchFixture()
	ctx := context.Background()

	// Deja un folio ya conciliado para poder eliminarlo.
	require.NoError(t, fx.tracker.tracker.SaveAck(ctx, ackDePrueba()))

	mod := documentoDeVenta("2001")
	mod.Accion = entity.AccionModificado
	del := documentoDeVenta("1001")
	del.Accion = entity.AccionEliminado

	report, err := fx.orch.Run(ctx, []*source.SalesDocument{mod, del})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Modificados)
	assert.Equal(t, 1, report.Eliminados)
	assert.Equal(t, 0, report.Enviados, "ni modificados ni eliminados pasan por la fila de espera")
	assert.Empty(t, fx.submitter.enviados)

	assert.Equal(t, entity.EstadoCACompletado, fx.tracker.cabeceras.data["2001"].Estado)
	assert.NotContains(t, fx.tracker.cabeceras.data, "1001")
}

// Caso 6: Contexto cancelado durante el envío corta el ciclo limpiamente.
func TestRun_ContextoCancelado(t *testing.T) {
	fx := newOrchFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := fx.orch.Run(ctx, []*source.SalesDocument{documentoDeVenta("1001")})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Enviados)
	assert.Empty(t, fx.submitter.enviados, "con el contexto cancelado no se envía nada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Service
// ──────────────────────────────────────────────────────────────────────────────

type fakeSource struct {
	docs []*source.SalesDocument
	err  error
}

func (f *fakeSource) FetchDocuments() ([]*source.SalesDocument, error) {
	return f.docs, f.err
}

// Caso 7: El servicio lee del origen y corre el ciclo de punta a punta.
func TestService_RunCycle(t *testing.T) {
	fx := newOrchFixture()
	fx.poller.respuestas["1001"] = completadoPara("1001", 900, 2)
	svc := appsync.NewService(&fakeSource{docs: []*source.SalesDocument{documentoDeVenta("1001")}}, fx.orch, loggerDePrueba())

	report, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Enviados)
	assert.Equal(t, 1, report.Consultados)
}

// Caso 8: Un origen ilegible aborta el ciclo con error, sin tocar estado.
func TestService_RunCycleOrigenIlegible(t *testing.T) {
	fx := newOrchFixture()
	svc := appsync.NewService(&fakeSource{err: assert.AnError}, fx.orch, loggerDePrueba())

	_, err := svc.RunCycle(context.Background())
	require.Error(t, err)
	assert.Empty(t, fx.tracker.cabeceras.data)
}
