package velneo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	appsync "github.com/jhoicas/ventas-sync/internal/application/sync"
	"github.com/jhoicas/ventas-sync/internal/domain/source"
	"github.com/jhoicas/ventas-sync/pkg/config"
	"github.com/jhoicas/ventas-sync/pkg/logger"
)

var _ appsync.Submitter = (*SubmitClient)(nil)

// Códigos HTTP que el servidor usa como éxito en ambos endpoints.
func esExito(status int) bool {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return true
	}
	return false
}

// SubmitClient encola documentos de venta en la fila de espera del servidor
// Velneo. El protocolo de alta es liviano: POST JSON y, en éxito, el cuerpo
// es el id numérico de la fila de espera como texto plano (no un sobre JSON).
type SubmitClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// NewSubmitClient construye el cliente de alta. El timeout viene de la
// configuración (60 s por defecto: el servidor puede tardar en responder).
func NewSubmitClient(cfg config.VelneoConfig, log *logger.Logger) *SubmitClient {
	return &SubmitClient{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		log:        log,
	}
}

// Submit envía un documento y decodifica el acuse. Nunca propaga errores:
// cualquier fallo de transporte o protocolo produce exactamente una entrada
// en Failed y el documento completo se trata como no enviado, sin estado
// parcial.
func (c *SubmitClient) Submit(ctx context.Context, doc *source.SalesDocument) *appsync.SubmitResult {
	result := &appsync.SubmitResult{}

	// Un documento sin partidas es estructuralmente inválido: se rechaza
	// antes de cualquier llamada de red.
	if len(doc.Detalles) == 0 {
		c.log.Warn().
			Str("folio", doc.Folio).
			Int("recibos", len(doc.Recibos)).
			Msg("envío declinado: documento sin partidas")
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    doc.Folio,
			ErrorMsg: "omitido: documento sin partidas",
		})
		return result
	}

	c.log.Info().
		Str("folio", doc.Folio).
		Int("partidas", len(doc.Detalles)).
		Int("recibos", len(doc.Recibos)).
		Msg("enviando documento")

	payload := buildCreatePayload(doc)
	body, err := json.Marshal(payload)
	if err != nil {
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    doc.Folio,
			ErrorMsg: "preparar payload: " + err.Error(),
		})
		return result
	}

	url := fmt.Sprintf("%s?api_key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    doc.Folio,
			ErrorMsg: "crear request: " + err.Error(),
		})
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeout, fallo de conexión o cualquier otro error del cliente:
		// degrada a fallo por documento, el lote continúa.
		c.log.Error().Err(err).Str("folio", doc.Folio).Msg("fallo de transporte en el envío")
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    doc.Folio,
			ErrorMsg: "fallo de transporte: " + err.Error(),
		})
		return result
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    doc.Folio,
			Status:   resp.StatusCode,
			ErrorMsg: "leer respuesta: " + err.Error(),
		})
		return result
	}

	if !esExito(resp.StatusCode) {
		msg := fmt.Sprintf("request fallido con status %d: %s", resp.StatusCode, strings.TrimSpace(string(rawBody)))
		c.log.Error().Str("folio", doc.Folio).Int("status", resp.StatusCode).Msg("el servidor rechazó el envío")
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    doc.Folio,
			Status:   resp.StatusCode,
			ErrorMsg: msg,
		})
		return result
	}

	waitingID, err := strconv.ParseInt(strings.TrimSpace(string(rawBody)), 10, 64)
	if err != nil || waitingID <= 0 {
		msg := fmt.Sprintf("cuerpo de acuse inválido, se esperaba un id numérico: %q", strings.TrimSpace(string(rawBody)))
		c.log.Error().Str("folio", doc.Folio).Msg(msg)
		result.Failed = append(result.Failed, appsync.FailureEntry{
			Folio:    doc.Folio,
			Status:   resp.StatusCode,
			ErrorMsg: msg,
		})
		return result
	}

	result.Success = append(result.Success, buildAck(doc, waitingID))
	c.log.Info().Str("folio", doc.Folio).Int64("waiting_id", waitingID).Msg("documento aceptado en fila de espera")
	return result
}

// buildAck arma el acuse con los marcadores de partidas y recibos en estado
// pendiente, preservando el índice original 1-based.
func buildAck(doc *source.SalesDocument, waitingID int64) appsync.AckEntry {
	ack := appsync.AckEntry{
		Folio:         doc.Folio,
		WaitingID:     waitingID,
		FechaEmision:  doc.Fecha,
		TotalPartidas: len(doc.Detalles),
		TotalRecibos:  len(doc.Recibos),
		Hash:          doc.Hash,
	}
	for i, d := range doc.Detalles {
		ack.Partidas = append(ack.Partidas, appsync.LineItemAck{
			Indice:     i + 1,
			Art:        d.Art,
			Ref:        d.Ref,
			DetailHash: d.DetailHash,
		})
	}
	for i, r := range doc.Recibos {
		ack.Recibos = append(ack.Recibos, appsync.ReceiptAck{
			Indice: i + 1,
			NumRef: r.RefRecibo,
		})
	}
	return ack
}
