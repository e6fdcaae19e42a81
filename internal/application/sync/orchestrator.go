package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ventas-sync/internal/domain/entity"
	"github.com/jhoicas/ventas-sync/internal/domain/repository"
	"github.com/jhoicas/ventas-sync/internal/domain/source"
	"github.com/jhoicas/ventas-sync/pkg/fechas"
	"github.com/jhoicas/ventas-sync/pkg/logger"
)

const origenOrquestador = "orchestrator"

// Options parámetros del ciclo de sincronización.
type Options struct {
	// WaitInterval es la pausa fija entre la fase de envío y la de consulta:
	// el servidor procesa los envíos de forma asíncrona y no ofrece callback
	// de término, así que se le da un margen antes de preguntar.
	WaitInterval time.Duration
	// PendingLimit acota cuántos pendientes se consultan por ciclo.
	PendingLimit int
}

// Report agrega los desenlaces de un ciclo completo.
type Report struct {
	RunID             string
	Enviados          int
	EnviosFallidos    int
	Consultados       int
	ConsultasFallidas int
	Modificados       int
	Eliminados        int
}

// Orchestrator dirige el ciclo de dos fases contra el servidor Velneo:
//
//	fase 1: envío de documentos nuevos (fila de espera)
//	pausa fija configurable
//	fase 2: consulta de pendientes leídos del estado persistido
//
// El fallo de un documento nunca aborta el lote: se registra en el diario de
// errores y en el registro de reintentos, y el ciclo continúa. No hay estado
// terminal de fallo ni corte de reintentos: un folio que sigue fallando
// vuelve a ser elegible en cada corrida.
//
// El procesamiento es secuencial documento a documento dentro de cada fase;
// el propio servidor serializa las cargas, así que no se gana nada
// paralelizando aquí.
type Orchestrator struct {
	submitter Submitter
	poller    PendingPoller
	tracker   *Tracker
	retries   repository.RetryRepository
	errorLog  repository.ErrorLogRepository
	opts      Options
	log       *logger.Logger
}

// NewOrchestrator construye el orquestador con todas sus dependencias.
func NewOrchestrator(
	submitter Submitter,
	poller PendingPoller,
	tracker *Tracker,
	retries repository.RetryRepository,
	errorLog repository.ErrorLogRepository,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		submitter: submitter,
		poller:    poller,
		tracker:   tracker,
		retries:   retries,
		errorLog:  errorLog,
		opts:      opts,
		log:       log,
	}
}

// Run ejecuta un ciclo completo sobre el lote de documentos dado. Los
// documentos con acción modificado/eliminado siguen la vía directa de una
// sola fase; los registrados pasan por envío + consulta.
func (o *Orchestrator) Run(ctx context.Context, docs []*source.SalesDocument) (*Report, error) {
	report := &Report{RunID: uuid.New().String()}
	log := o.log.With().Str("run_id", report.RunID).Logger()

	var creates, updates, deletes []*source.SalesDocument
	for _, doc := range docs {
		switch doc.Accion {
		case entity.AccionModificado:
			updates = append(updates, doc)
		case entity.AccionEliminado:
			deletes = append(deletes, doc)
		default:
			creates = append(creates, doc)
		}
	}

	log.Info().
		Int("nuevos", len(creates)).
		Int("modificados", len(updates)).
		Int("eliminados", len(deletes)).
		Msg("iniciando ciclo de sincronización")

	o.submitAll(ctx, creates, report)

	// Margen para que el servidor procese la fila de espera antes de
	// consultar. Respetar la cancelación del contexto durante la pausa.
	if o.opts.WaitInterval > 0 && len(creates) > 0 {
		select {
		case <-time.After(o.opts.WaitInterval):
		case <-ctx.Done():
			return report, ctx.Err()
		}
	}

	o.pollPending(ctx, report)
	o.applyUpdates(ctx, updates, report)
	o.applyDeletes(ctx, deletes, report)

	log.Info().
		Int("enviados", report.Enviados).
		Int("envios_fallidos", report.EnviosFallidos).
		Int("consultados", report.Consultados).
		Int("consultas_fallidas", report.ConsultasFallidas).
		Msg("ciclo de sincronización terminado")

	return report, nil
}

// submitAll recorre los documentos nuevos uno a uno (fase 1).
func (o *Orchestrator) submitAll(ctx context.Context, docs []*source.SalesDocument, report *Report) {
	for _, doc := range docs {
		if ctx.Err() != nil {
			return
		}
		result := o.submitter.Submit(ctx, doc)

		if len(result.Success) > 0 {
			ack := result.Success[0]
			if err := o.tracker.SaveAck(ctx, ack); err != nil {
				// Error de persistencia: se deja registrado y se confía en
				// la siguiente corrida, sin reintentar la escritura aquí.
				o.log.Error().Err(err).Str("folio", ack.Folio).Msg("no se pudo persistir el acuse")
				o.errorLog.Append(ctx, "persistencia de acuse: "+err.Error(), origenOrquestador)
				o.registrarReintento(ctx, doc)
				report.EnviosFallidos++
				continue
			}
			// Limpia un reintento pendiente de un ciclo anterior.
			o.marcarReintentoCompletado(ctx, ack.Folio)
			report.Enviados++
			o.log.Info().Str("folio", ack.Folio).Int64("waiting_id", ack.WaitingID).Msg("documento encolado")
			continue
		}

		report.EnviosFallidos++
		for _, fallo := range result.Failed {
			o.log.Error().Str("folio", fallo.Folio).Int("status", fallo.Status).Str("error", fallo.ErrorMsg).Msg("envío fallido")
			o.errorLog.Append(ctx, "fallo al procesar folio "+fallo.Folio+": "+fallo.ErrorMsg, origenOrquestador)
		}
		o.registrarReintento(ctx, doc)
	}
}

// pollPending consulta los documentos pendientes leídos del almacén (fase 2).
// El conjunto pendiente sale del estado persistido, no de memoria: esto es lo
// que permite retomar tras un reinicio del proceso.
func (o *Orchestrator) pollPending(ctx context.Context, report *Report) {
	pendientes, err := o.tracker.PendingDocuments(ctx, o.opts.PendingLimit)
	if err != nil {
		o.log.Error().Err(err).Msg("no se pudo leer el conjunto pendiente")
		o.errorLog.Append(ctx, "lectura de pendientes: "+err.Error(), origenOrquestador)
		return
	}
	o.log.Info().Int("pendientes", len(pendientes)).Msg("consultando documentos pendientes")

	for _, pend := range pendientes {
		if ctx.Err() != nil {
			return
		}
		result := o.poller.Poll(ctx, pend)

		if len(result.Success) > 0 {
			comp := result.Success[0]
			if err := o.tracker.ApplyCompletion(ctx, comp); err != nil {
				o.log.Error().Err(err).Str("folio", comp.Folio).Msg("no se pudo aplicar el desenlace")
				o.errorLog.Append(ctx, "persistencia de desenlace: "+err.Error(), origenOrquestador)
				o.registrarReintentoFolio(ctx, pend.Folio, pend.Fecha)
				report.ConsultasFallidas++
				continue
			}
			o.marcarReintentoCompletado(ctx, comp.Folio)
			report.Consultados++
			o.log.Info().Str("folio", comp.Folio).Str("estado", comp.Estado).Int64("velneo_id", comp.VelneoID).Msg("documento conciliado")
			continue
		}

		report.ConsultasFallidas++
		for _, fallo := range result.Failed {
			o.log.Error().Str("folio", fallo.Folio).Int("status", fallo.Status).Str("error", fallo.ErrorMsg).Msg("consulta fallida")
			o.errorLog.Append(ctx, "fallo en consulta de folio "+fallo.Folio+": "+fallo.ErrorMsg, origenOrquestador)
		}
		// El documento sigue pendiente para una corrida futura.
		o.registrarReintentoFolio(ctx, pend.Folio, pend.Fecha)
	}
}

// applyUpdates vía directa de una sola fase para documentos modificados.
func (o *Orchestrator) applyUpdates(ctx context.Context, docs []*source.SalesDocument, report *Report) {
	for _, doc := range docs {
		if ctx.Err() != nil {
			return
		}
		if err := o.tracker.ApplyUpdate(ctx, doc); err != nil {
			o.log.Error().Err(err).Str("folio", doc.Folio).Msg("modificación fallida")
			o.errorLog.Append(ctx, "modificación de folio "+doc.Folio+": "+err.Error(), origenOrquestador)
			o.registrarReintento(ctx, doc)
			continue
		}
		report.Modificados++
	}
}

// applyDeletes vía directa de una sola fase para documentos eliminados.
func (o *Orchestrator) applyDeletes(ctx context.Context, docs []*source.SalesDocument, report *Report) {
	for _, doc := range docs {
		if ctx.Err() != nil {
			return
		}
		if err := o.tracker.ApplyDelete(ctx, doc.Folio); err != nil {
			o.log.Error().Err(err).Str("folio", doc.Folio).Msg("eliminación fallida")
			o.errorLog.Append(ctx, "eliminación de folio "+doc.Folio+": "+err.Error(), origenOrquestador)
			o.registrarReintento(ctx, doc)
			continue
		}
		report.Eliminados++
	}
}

// registrarReintento upsertea el registro de reintento de un documento con la
// fecha de emisión del origen (o la actual si no parsea).
func (o *Orchestrator) registrarReintento(ctx context.Context, doc *source.SalesDocument) {
	if doc.Folio == "" {
		o.log.Warn().Msg("documento sin folio, no se registra reintento")
		return
	}
	if err := o.retries.RecordAttempt(ctx, doc.Folio, fechas.Normalizar(doc.Fecha)); err != nil {
		o.log.Error().Err(err).Str("folio", doc.Folio).Msg("no se pudo registrar el reintento")
	}
}

// registrarReintentoFolio variante para la fase de consulta, donde solo se
// tiene la vista pendiente (fecha ya en ISO).
func (o *Orchestrator) registrarReintentoFolio(ctx context.Context, folio, fechaISO string) {
	fecha, err := time.Parse("2006-01-02", fechaISO)
	if err != nil {
		fecha = time.Now()
	}
	if err := o.retries.RecordAttempt(ctx, folio, fecha); err != nil {
		o.log.Error().Err(err).Str("folio", folio).Msg("no se pudo registrar el reintento")
	}
}

// marcarReintentoCompletado limpia el registro de reintento; la ausencia de
// registro previo se tolera.
func (o *Orchestrator) marcarReintentoCompletado(ctx context.Context, folio string) {
	ok, err := o.retries.MarkCompleted(ctx, folio)
	if err != nil {
		o.log.Error().Err(err).Str("folio", folio).Msg("no se pudo marcar el reintento como completado")
		return
	}
	if !ok {
		o.log.Debug().Str("folio", folio).Msg("folio sin registro de reintento previo")
	}
}
