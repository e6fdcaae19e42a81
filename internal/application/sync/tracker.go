package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/ventas-sync/internal/domain"
	"github.com/jhoicas/ventas-sync/internal/domain/entity"
	"github.com/jhoicas/ventas-sync/internal/domain/repository"
	"github.com/jhoicas/ventas-sync/internal/domain/source"
	"github.com/jhoicas/ventas-sync/pkg/fechas"
	"github.com/jhoicas/ventas-sync/pkg/logger"
)

// Tracker mantiene el estado de conciliación persistido de los tres tipos de
// entidad: cabeceras, partidas y recibos. Cada colección se escribe de forma
// independiente; no hay transacción que las abarque, por eso cada upsert es
// idempotente y la fase de consulta relee el estado persistido en vez de
// confiar en memoria.
type Tracker struct {
	cabeceras repository.InvoiceTrackingRepository
	partidas  repository.LineItemRepository
	recibos   repository.ReceiptRepository
	tipoDoc   string
	serie     int
	log       *logger.Logger
}

// NewTracker construye el tracker con sus repositorios.
func NewTracker(
	cabeceras repository.InvoiceTrackingRepository,
	partidas repository.LineItemRepository,
	recibos repository.ReceiptRepository,
	tipoDoc string,
	serie int,
	log *logger.Logger,
) *Tracker {
	return &Tracker{
		cabeceras: cabeceras,
		partidas:  partidas,
		recibos:   recibos,
		tipoDoc:   tipoDoc,
		serie:     serie,
		log:       log,
	}
}

// SaveAck persiste el acuse de un envío exitoso: cabecera en estado pendiente
// más los marcadores de partidas y recibos con su índice original y sin id
// Velneo asignado. Seguro de invocar dos veces con el mismo acuse.
func (t *Tracker) SaveAck(ctx context.Context, ack AckEntry) error {
	inv := &entity.Invoice{
		Folio:              ack.Folio,
		WaitingID:          ack.WaitingID,
		Hash:               ack.Hash,
		Estado:             entity.EstadoPendiente,
		Accion:             entity.AccionEnviado,
		FechaEmision:       fechas.Normalizar(ack.FechaEmision),
		FechaProcesamiento: time.Now(),
		TotalPartidas:      ack.TotalPartidas,
		TotalRecibos:       ack.TotalRecibos,
		TipoDoc:            t.tipoDoc,
	}
	if err := t.cabeceras.Upsert(ctx, inv); err != nil {
		return fmt.Errorf("upsert cabecera %s: %w", ack.Folio, err)
	}

	items := make([]*entity.LineItem, 0, len(ack.Partidas))
	for _, p := range ack.Partidas {
		items = append(items, &entity.LineItem{
			Folio:      ack.Folio,
			Indice:     p.Indice,
			Art:        p.Art,
			Ref:        p.Ref,
			DetailHash: p.DetailHash,
			Estado:     entity.EstadoPendiente,
			Accion:     entity.AccionEnviado,
		})
	}
	escritas, err := t.partidas.BatchUpsert(ctx, items)
	if err != nil {
		return fmt.Errorf("upsert partidas %s: %w", ack.Folio, err)
	}
	t.log.Debug().Str("folio", ack.Folio).Int("partidas", escritas).Msg("partidas en espera registradas")

	recs := make([]*entity.Receipt, 0, len(ack.Recibos))
	for _, r := range ack.Recibos {
		recs = append(recs, &entity.Receipt{
			Folio:        ack.Folio,
			Indice:       r.Indice,
			NumRef:       r.NumRef,
			Estado:       entity.EstadoPendiente,
			Accion:       entity.AccionEnviado,
			FechaEmision: inv.FechaEmision,
		})
	}
	escritos, err := t.recibos.BatchUpsert(ctx, recs)
	if err != nil {
		return fmt.Errorf("upsert recibos %s: %w", ack.Folio, err)
	}
	t.log.Debug().Str("folio", ack.Folio).Int("recibos", escritos).Msg("recibos en espera registrados")

	return nil
}

// ApplyCompletion aplica el desenlace de una consulta: cabecera, luego
// partidas, luego recibos, cada uno de forma independiente. Rechaza de forma
// explícita cualquier transición que haga retroceder el estado de la cabecera.
func (t *Tracker) ApplyCompletion(ctx context.Context, comp CompletionEntry) error {
	if err := entity.ValidarEstado(comp.Estado); err != nil {
		return fmt.Errorf("estado %q de folio %s: %w", comp.Estado, comp.Folio, err)
	}
	if err := entity.ValidarAccion(comp.Accion); err != nil {
		return fmt.Errorf("acción %q de folio %s: %w", comp.Accion, comp.Folio, err)
	}

	actual, err := t.cabeceras.GetByFolio(ctx, comp.Folio)
	if err != nil {
		return fmt.Errorf("leer cabecera %s: %w", comp.Folio, err)
	}
	if actual != nil && !entity.PuedeTransicionar(actual.Estado, comp.Estado) {
		// Respuesta tardía o duplicada: se descarta sin fallar el ciclo.
		t.log.Warn().
			Err(domain.ErrRegresionEstado).
			Str("folio", comp.Folio).
			Str("desde", actual.Estado).
			Str("hacia", comp.Estado).
			Msg("transición regresiva de estado rechazada")
		return nil
	}

	ok, err := t.cabeceras.UpdateEstado(ctx, comp.Folio, comp.VelneoID, comp.Estado, comp.Accion)
	if err != nil {
		return fmt.Errorf("actualizar cabecera %s: %w", comp.Folio, err)
	}
	if !ok {
		t.log.Warn().Str("folio", comp.Folio).Msg("cabecera no encontrada al completar")
	}

	for _, p := range comp.Partidas {
		ok, err := t.partidas.UpdateEstado(ctx, comp.Folio, p.Indice, p.VelneoID, p.Estado, comp.Accion)
		if err != nil {
			return fmt.Errorf("actualizar partida %s[%d]: %w", comp.Folio, p.Indice, err)
		}
		if !ok {
			t.log.Warn().Str("folio", comp.Folio).Int("indice", p.Indice).Msg("partida no encontrada al completar")
		}
	}

	for _, r := range comp.Recibos {
		rec := &entity.Receipt{
			Folio:       comp.Folio,
			Indice:      r.Indice,
			VelneoID:    &r.VelneoID,
			CtaCorID:    &r.CtaCorID,
			DtlDocCobID: &r.DtlDocCobID,
			RboCobID:    &r.RboCobID,
			Estado:      r.Estado,
			Accion:      comp.Accion,
		}
		ok, err := t.recibos.UpdateEstado(ctx, rec)
		if err != nil {
			return fmt.Errorf("actualizar recibo %s[%d]: %w", comp.Folio, r.Indice, err)
		}
		if !ok {
			t.log.Warn().Str("folio", comp.Folio).Int("indice", r.Indice).Msg("recibo no encontrado al completar")
		}
	}

	return nil
}

// PendingDocuments lee del almacén persistido las cabeceras pendientes y las
// formatea para la consulta al servidor (serie de la sucursal, fecha ISO).
func (t *Tracker) PendingDocuments(ctx context.Context, limit int) ([]PendingDocument, error) {
	cabeceras, err := t.cabeceras.ListPendientes(ctx, t.tipoDoc, limit)
	if err != nil {
		return nil, fmt.Errorf("listar pendientes: %w", err)
	}
	pendientes := make([]PendingDocument, 0, len(cabeceras))
	for _, c := range cabeceras {
		pendientes = append(pendientes, PendingDocument{
			Folio:         c.Folio,
			WaitingID:     c.WaitingID,
			Serie:         t.serie,
			Fecha:         c.FechaEmision.Format("2006-01-02"),
			TotalPartidas: c.TotalPartidas,
			TotalRecibos:  c.TotalRecibos,
		})
	}
	return pendientes, nil
}

// ApplyUpdate aplica una modificación directa sobre una cabecera ya
// reconocida por el servidor (sin fase de envío/consulta).
func (t *Tracker) ApplyUpdate(ctx context.Context, doc *source.SalesDocument) error {
	inv := &entity.Invoice{
		Folio:              doc.Folio,
		Hash:               doc.Hash,
		Estado:             entity.EstadoCACompletado,
		Accion:             entity.AccionModificado,
		FechaEmision:       fechas.Normalizar(doc.Fecha),
		FechaProcesamiento: time.Now(),
		TotalPartidas:      len(doc.Detalles),
		TotalRecibos:       len(doc.Recibos),
		TipoDoc:            t.tipoDoc,
	}
	if err := t.cabeceras.Upsert(ctx, inv); err != nil {
		return fmt.Errorf("aplicar modificación %s: %w", doc.Folio, err)
	}
	return nil
}

// ApplyDelete elimina el estado de conciliación de un folio: cabecera,
// partidas y recibos.
func (t *Tracker) ApplyDelete(ctx context.Context, folio string) error {
	if err := t.partidas.DeleteByFolio(ctx, folio); err != nil {
		return fmt.Errorf("eliminar partidas %s: %w", folio, err)
	}
	if err := t.recibos.DeleteByFolio(ctx, folio); err != nil {
		return fmt.Errorf("eliminar recibos %s: %w", folio, err)
	}
	if err := t.cabeceras.DeleteByFolio(ctx, folio); err != nil {
		return fmt.Errorf("eliminar cabecera %s: %w", folio, err)
	}
	return nil
}

// Stats devuelve el conteo de cabeceras por estado (visibilidad operativa).
func (t *Tracker) Stats(ctx context.Context) (map[string]int, error) {
	return t.cabeceras.CountByEstado(ctx)
}
