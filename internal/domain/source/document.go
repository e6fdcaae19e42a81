// Package source define la forma uniforme de los documentos de venta que
// produce la capa de lectura del almacén legado (DBF). El núcleo de
// sincronización solo consume esta forma; la decodificación del formato en
// disco es un colaborador externo.
package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SalesDocument es un documento de venta ya mapeado a campos uniformes:
// cabecera más partidas y recibos ordenados.
type SalesDocument struct {
	Folio  string
	Emp    string
	EmpDiv string
	Clt    int
	Fpg    int
	Cmr    int
	Ser    int
	Alm    string
	Pai    string
	Hor    int
	Fecha  string // fecha cruda del origen, ej. "30/04/2025 12:00:00 a. m."
	Hash   string // huella del contenido original (ver ContentHash)
	Accion string // registrado | modificado | eliminado

	Detalles []SalesDetail
	Recibos  []SalesReceipt
}

// SalesDetail es una partida del documento, en el orden original.
type SalesDetail struct {
	Art        string
	Ref        string
	Cantidad   decimal.Decimal
	Precio     decimal.Decimal
	NDescto1   decimal.Decimal
	NDescto2   decimal.Decimal
	Descuento  decimal.Decimal
	RegIvaVta  int
	Clt        int
	Alm        string
	Emp        string
	EmpDiv     string
	Hor        int
	DescAdi    string
	DetailHash string
}

// SalesReceipt es un recibo de cobro asociado al documento.
type SalesReceipt struct {
	RefRecibo string
	Importe   decimal.Decimal
	CajaBco   int
	Tienda    string
	Plaza     string
	RefTipo   string
	Hora      string
	Fpg       int
}

// RecordSource es el puerto de entrada de documentos candidatos. La
// implementación concreta (lector DBF, exportes JSON, etc.) queda fuera del
// núcleo.
type RecordSource interface {
	FetchDocuments() ([]*SalesDocument, error)
}

// ContentHash calcula la huella SHA-256 del contenido del documento. Se
// asigna una sola vez al crear el registro y es inmutable; existe para poder
// distinguir "nunca enviado" de "ya enviado sin cambios".
func ContentHash(doc *SalesDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%d|%d|%s", doc.Folio, doc.Fecha, doc.Emp, doc.Clt, doc.Fpg, doc.Alm)
	for _, d := range doc.Detalles {
		fmt.Fprintf(&b, "|%s:%s:%s", d.Art, d.Cantidad.String(), d.Precio.String())
	}
	for _, r := range doc.Recibos {
		fmt.Fprintf(&b, "|%s:%s", r.RefRecibo, r.Importe.String())
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
