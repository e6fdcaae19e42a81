// Package legacy lee los documentos de venta que el extractor del almacén
// legado deja como archivos JSON en un directorio de intercambio (un archivo
// por lote o por documento). Es la implementación de source.RecordSource que
// usa el binario; reemplazarla por un lector directo del DBF no toca el núcleo.
package legacy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jhoicas/ventas-sync/internal/domain/source"
	"github.com/jhoicas/ventas-sync/pkg/logger"
	"github.com/shopspring/decimal"
)

var _ source.RecordSource = (*JSONSource)(nil)

// documentoJSON es la forma en disco que produce el extractor.
type documentoJSON struct {
	Folio  string `json:"folio"`
	Emp    string `json:"emp"`
	EmpDiv string `json:"emp_div"`
	Clt    int    `json:"clt"`
	Fpg    int    `json:"fpg"`
	Cmr    int    `json:"cmr"`
	Ser    int    `json:"ser"`
	Alm    string `json:"alm"`
	Pai    string `json:"pai"`
	Hor    int    `json:"hor"`
	Fecha  string `json:"fecha"`
	Accion string `json:"accion"`

	Detalles []detalleJSON `json:"detalles"`
	Recibos  []reciboJSON  `json:"recibos"`
}

type detalleJSON struct {
	Art       string          `json:"art"`
	Ref       string          `json:"ref"`
	Cantidad  decimal.Decimal `json:"cantidad"`
	Precio    decimal.Decimal `json:"precio"`
	NDescto1  decimal.Decimal `json:"n_descto_1"`
	NDescto2  decimal.Decimal `json:"n_descto_2"`
	Descuento decimal.Decimal `json:"descuento"`
	RegIvaVta int             `json:"reg_iva_vta"`
	Clt       int             `json:"clt"`
	Alm       string          `json:"alm"`
	Emp       string          `json:"emp"`
	EmpDiv    string          `json:"emp_div"`
	Hor       int             `json:"hor"`
	DescAdi   string          `json:"desc_adi"`
}

type reciboJSON struct {
	RefRecibo string          `json:"ref_recibo"`
	Importe   decimal.Decimal `json:"importe"`
	CajaBco   int             `json:"caja_bco"`
	Tienda    string          `json:"tienda"`
	Plaza     string          `json:"plaza"`
	RefTipo   string          `json:"ref_tipo"`
	Hora      string          `json:"hora"`
	Fpg       int             `json:"fpg"`
}

// JSONSource lee todos los .json del directorio de intercambio en orden de
// nombre. Un archivo puede contener un documento o un arreglo de documentos.
type JSONSource struct {
	dir string
	log *logger.Logger
}

// NewJSONSource construye el lector sobre el directorio dado.
func NewJSONSource(dir string, log *logger.Logger) *JSONSource {
	return &JSONSource{dir: dir, log: log}
}

// FetchDocuments lee y mapea todos los documentos disponibles. Un archivo
// ilegible se salta con un aviso en el log; no aborta el lote completo, los
// documentos bien formados del resto de archivos siguen siendo elegibles.
func (s *JSONSource) FetchDocuments() ([]*source.SalesDocument, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("leer directorio de origen %s: %w", s.dir, err)
	}

	var nombres []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		nombres = append(nombres, e.Name())
	}
	sort.Strings(nombres)

	var docs []*source.SalesDocument
	for _, nombre := range nombres {
		ruta := filepath.Join(s.dir, nombre)
		lote, err := s.leerArchivo(ruta)
		if err != nil {
			s.log.Warn().Err(err).Str("archivo", nombre).Msg("archivo de origen ilegible, saltado")
			continue
		}
		docs = append(docs, lote...)
	}
	return docs, nil
}

func (s *JSONSource) leerArchivo(ruta string) ([]*source.SalesDocument, error) {
	raw, err := os.ReadFile(ruta)
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", ruta, err)
	}

	// Primero como arreglo; si no, como documento suelto.
	var crudos []documentoJSON
	if err := json.Unmarshal(raw, &crudos); err != nil {
		var uno documentoJSON
		if err := json.Unmarshal(raw, &uno); err != nil {
			return nil, fmt.Errorf("decodificar %s: %w", ruta, err)
		}
		crudos = []documentoJSON{uno}
	}

	docs := make([]*source.SalesDocument, 0, len(crudos))
	for _, c := range crudos {
		if c.Folio == "" {
			s.log.Warn().Str("archivo", ruta).Msg("documento sin folio, descartado")
			continue
		}
		docs = append(docs, mapear(c))
	}
	return docs, nil
}

// mapear convierte la forma en disco a la forma uniforme del núcleo y calcula
// la huella de contenido.
func mapear(c documentoJSON) *source.SalesDocument {
	doc := &source.SalesDocument{
		Folio:  c.Folio,
		Emp:    c.Emp,
		EmpDiv: c.EmpDiv,
		Clt:    c.Clt,
		Fpg:    c.Fpg,
		Cmr:    c.Cmr,
		Ser:    c.Ser,
		Alm:    c.Alm,
		Pai:    c.Pai,
		Hor:    c.Hor,
		Fecha:  c.Fecha,
		Accion: c.Accion,
	}
	for _, d := range c.Detalles {
		det := source.SalesDetail{
			Art:       d.Art,
			Ref:       d.Ref,
			Cantidad:  d.Cantidad,
			Precio:    d.Precio,
			NDescto1:  d.NDescto1,
			NDescto2:  d.NDescto2,
			Descuento: d.Descuento,
			RegIvaVta: d.RegIvaVta,
			Clt:       d.Clt,
			Alm:       d.Alm,
			Emp:       d.Emp,
			EmpDiv:    d.EmpDiv,
			Hor:       d.Hor,
			DescAdi:   d.DescAdi,
		}
		det.DetailHash = hashDetalle(det)
		doc.Detalles = append(doc.Detalles, det)
	}
	for _, r := range c.Recibos {
		doc.Recibos = append(doc.Recibos, source.SalesReceipt{
			RefRecibo: r.RefRecibo,
			Importe:   r.Importe,
			CajaBco:   r.CajaBco,
			Tienda:    r.Tienda,
			Plaza:     r.Plaza,
			RefTipo:   r.RefTipo,
			Hora:      r.Hora,
			Fpg:       r.Fpg,
		})
	}
	doc.Hash = source.ContentHash(doc)
	return doc
}

// hashDetalle huella de contenido de una partida individual, análoga a la de
// la cabecera.
func hashDetalle(d source.SalesDetail) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		d.Art, d.Ref, d.Cantidad.String(), d.Precio.String(), d.NDescto1.String(), d.NDescto2.String())))
	return hex.EncodeToString(sum[:])
}
