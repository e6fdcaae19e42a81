package sync

import (
	"context"

	"github.com/jhoicas/ventas-sync/internal/domain/source"
)

// ─────────────────────────────────────────────────────────────────────────────
// Puertos de salida hacia el servidor Velneo. Las implementaciones concretas
// viven en infrastructure/velneo; para tests se inyectan fakes.
//
// Ninguna de estas operaciones propaga errores de transporte o protocolo:
// todo fallo se captura dentro del resultado como FailureEntry, de modo que
// el orquestador nunca aborta el lote por un documento.
// ─────────────────────────────────────────────────────────────────────────────

// Submitter encola un documento en el servidor (primera fase).
type Submitter interface {
	Submit(ctx context.Context, doc *source.SalesDocument) *SubmitResult
}

// PendingPoller consulta el estado de un documento ya encolado (segunda fase).
type PendingPoller interface {
	Poll(ctx context.Context, pending PendingDocument) *PollResult
}

// SubmitResult resultado del envío de un documento: exactamente una entrada,
// en success o en failed.
type SubmitResult struct {
	Success []AckEntry
	Failed  []FailureEntry
}

// PollResult resultado de la consulta de un documento pendiente.
type PollResult struct {
	Success []CompletionEntry
	Failed  []FailureEntry
}

// AckEntry es el acuse inmediato del servidor: el documento quedó en la fila
// de espera con WaitingID; partidas y recibos quedan como marcadores con el
// índice original y sin id asignado.
type AckEntry struct {
	Folio         string
	WaitingID     int64
	FechaEmision  string // fecha cruda del origen; se normaliza al persistir
	TotalPartidas int
	TotalRecibos  int
	Hash          string
	Partidas      []LineItemAck
	Recibos       []ReceiptAck
}

// LineItemAck marcador de partida pendiente, índice 1-based del documento
// original.
type LineItemAck struct {
	Indice     int
	Art        string
	Ref        string
	DetailHash string
}

// ReceiptAck marcador de recibo pendiente.
type ReceiptAck struct {
	Indice int
	NumRef string
}

// FailureEntry describe el fallo de un documento completo: no se asume
// ningún estado parcial del lado del servidor.
type FailureEntry struct {
	Folio    string
	Status   int // status HTTP si lo hubo; 0 en fallos de transporte
	ErrorMsg string
}

// PendingDocument es la vista de un documento pendiente tal como sale del
// almacén persistido, lista para armar la consulta al servidor.
type PendingDocument struct {
	Folio         string
	WaitingID     int64
	Serie         int
	Fecha         string // YYYY-MM-DD
	TotalPartidas int
	TotalRecibos  int
}

// CompletionEntry es el desenlace decodificado de una consulta: id definitivo
// de cabecera más el estado de cada partida y recibo cruzado por índice.
type CompletionEntry struct {
	Folio    string
	VelneoID int64
	Estado   string
	Accion   string
	Partidas []LineItemCompletion
	Recibos  []ReceiptCompletion
}

// LineItemCompletion id definitivo y estado de una partida.
type LineItemCompletion struct {
	Indice   int
	VelneoID int64
	Estado   string
}

// ReceiptCompletion ids definitivos y estado de un recibo.
type ReceiptCompletion struct {
	Indice      int
	VelneoID    int64 // ID_DTL_COB_APL_T
	CtaCorID    int64
	DtlDocCobID int64
	RboCobID    int64
	Estado      string
}
