package velneo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	appsync "github.com/jhoicas/ventas-sync/internal/application/sync"
	"github.com/jhoicas/ventas-sync/internal/domain/entity"
	"github.com/jhoicas/ventas-sync/pkg/config"
	"github.com/jhoicas/ventas-sync/pkg/logger"
)

var _ appsync.PendingPoller = (*PendingClient)(nil)

// estadoOK es el centinela de estado que el proceso remoto devuelve cuando la
// consulta fue atendida.
const estadoOK = "OK"

// pollResponse es la forma del JSON que devuelve el proceso de consulta:
// ST centinela, CA cabecera, PA partidas y CO recibos cobrados (opcional).
type pollResponse struct {
	ST      string     `json:"ST"`
	Mensaje string     `json:"MENSAJE"`
	CA      *caSection `json:"CA"`
	// Puntero a slice para distinguir PA ausente (fallo de protocolo) de PA
	// presente pero vacía (degradación blanda).
	PA *[]paEntry `json:"PA"`
	CO *coSection `json:"CO"`
}

type caSection struct {
	ID    int64       `json:"id"`
	Folio json.Number `json:"folio"`
}

type paEntry struct {
	ID     int64 `json:"id"`
	Indice int   `json:"_indice"`
}

type coSection struct {
	CtaCorID    int64     `json:"ID_CTA_COR_T"`
	DtlDocCobID int64     `json:"ID_DTL_DOC_COB_T"`
	RboCobID    int64     `json:"ID_RBO_COB_T"`
	DtlCobApl   []coEntry `json:"ID_DTL_COB_APL_T"`
}

type coEntry struct {
	ID     int64 `json:"ID_DTL_COB_APL_T"`
	Indice int   `json:"_indice"`
}

// PendingClient consulta el estado de procesamiento de un documento ya
// encolado. Los reintentos son responsabilidad del orquestador, no de este
// cliente.
type PendingClient struct {
	httpClient *http.Client
	getURL     string
	apiKey     string
	log        *logger.Logger
}

// NewPendingClient construye el cliente de consulta de pendientes.
func NewPendingClient(cfg config.VelneoConfig, log *logger.Logger) *PendingClient {
	return &PendingClient{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		getURL:     cfg.GetURL,
		apiKey:     cfg.APIKey,
		log:        log,
	}
}

// Poll consulta un documento pendiente por folio/serie/fecha y decodifica la
// respuesta. Valida la forma antes de usarla: ST debe ser "OK" y la sección
// CA debe existir y no estar vacía; una sección PA presente pero vacía es una
// señal blanda (cabecera incompleta), no un fallo.
func (c *PendingClient) Poll(ctx context.Context, pending appsync.PendingDocument) *appsync.PollResult {
	result := &appsync.PollResult{}

	url := fmt.Sprintf("%s?api_key=%s&params[NUM_DOC]=%s&params[SER]=%d&params[FCH]=%s",
		c.getURL, c.apiKey, pending.Folio, pending.Serie, pending.Fecha)

	c.log.Info().
		Str("folio", pending.Folio).
		Int64("waiting_id", pending.WaitingID).
		Str("fecha", pending.Fecha).
		Msg("consultando documento pendiente")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    pending.Folio,
			ErrorMsg: "crear request: " + err.Error(),
		})
		return result
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("folio", pending.Folio).Msg("fallo de transporte en la consulta")
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    pending.Folio,
			ErrorMsg: "fallo de transporte: " + err.Error(),
		})
		return result
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    pending.Folio,
			Status:   resp.StatusCode,
			ErrorMsg: "leer respuesta: " + err.Error(),
		})
		return result
	}

	if !esExito(resp.StatusCode) {
		msg := fmt.Sprintf("request fallido con status %d: %s", resp.StatusCode, strings.TrimSpace(string(rawBody)))
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    pending.Folio,
			Status:   resp.StatusCode,
			ErrorMsg: msg,
		})
		return result
	}

	entry, protoErr := c.decodificar(rawBody, pending)
	if protoErr != "" {
		c.log.Error().Str("folio", pending.Folio).Str("error", protoErr).Msg("respuesta de consulta inválida")
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    pending.Folio,
			Status:   resp.StatusCode,
			ErrorMsg: protoErr,
		})
		return result
	}

	result.Success = append(result.Success, entry)
	return result
}

// decodificar valida la forma de la respuesta y arma el desenlace. Devuelve
// un mensaje de error de protocolo no vacío cuando la respuesta es inusable.
func (c *PendingClient) decodificar(rawBody []byte, pending appsync.PendingDocument) (appsync.CompletionEntry, string) {
	var body pollResponse
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return appsync.CompletionEntry{}, "respuesta no es JSON válido: " + err.Error()
	}

	if body.ST != estadoOK {
		return appsync.CompletionEntry{}, fmt.Sprintf("estado de respuesta inválido: %q", body.ST)
	}
	if body.CA == nil || (body.CA.ID == 0 && body.CA.Folio.String() == "") {
		return appsync.CompletionEntry{}, "sección CA ausente o vacía en la respuesta"
	}
	if body.PA == nil {
		// PA ausente es una respuesta malformada, no una degradación: el
		// documento debe seguir pendiente y reintentarse en la próxima corrida.
		return appsync.CompletionEntry{}, "sección PA ausente en la respuesta"
	}
	partidasPA := *body.PA

	// Una PA presente pero vacía no es fatal: el servidor puede finalizar la
	// cabecera antes de que las partidas sean visibles. Se degrada a incompleto.
	estadoCA := entity.EstadoCompletado
	estadoPA := entity.EstadoCompletado
	if len(partidasPA) == 0 {
		c.log.Warn().Str("folio", pending.Folio).Msg("sección PA vacía, cabecera incompleta")
		estadoCA = entity.EstadoIncompleto
		estadoPA = entity.EstadoError
	}

	entry := appsync.CompletionEntry{
		Folio:    body.CA.Folio.String(),
		VelneoID: body.CA.ID,
		Estado:   estadoCA,
		Accion:   entity.AccionRegistrado,
	}
	if entry.Folio == "" {
		entry.Folio = pending.Folio
	}

	for _, pa := range partidasPA {
		// Un índice fuera del rango del documento original se descarta; se
		// deja rastro porque puede ser pérdida de datos del lado remoto.
		if pa.Indice < 1 || pa.Indice > pending.TotalPartidas {
			c.log.Warn().
				Str("folio", pending.Folio).
				Int("indice", pa.Indice).
				Int("total_partidas", pending.TotalPartidas).
				Msg("índice de partida fuera de rango, descartado")
			continue
		}
		entry.Partidas = append(entry.Partidas, appsync.LineItemCompletion{
			Indice:   pa.Indice,
			VelneoID: pa.ID,
			Estado:   estadoPA,
		})
	}

	// CO es opcional: su ausencia es aceptable para la vía feliz de
	// cabecera + partidas.
	if body.CO != nil && pending.TotalRecibos > 0 {
		for _, co := range body.CO.DtlCobApl {
			if co.Indice < 1 || co.Indice > pending.TotalRecibos {
				c.log.Warn().
					Str("folio", pending.Folio).
					Int("indice", co.Indice).
					Int("total_recibos", pending.TotalRecibos).
					Msg("índice de recibo fuera de rango, descartado")
				continue
			}
			entry.Recibos = append(entry.Recibos, appsync.ReceiptCompletion{
				Indice:      co.Indice,
				VelneoID:    co.ID,
				CtaCorID:    body.CO.CtaCorID,
				DtlDocCobID: body.CO.DtlDocCobID,
				RboCobID:    body.CO.RboCobID,
				Estado:      entity.EstadoCompletado,
			})
		}
	}

	return entry, ""
}
