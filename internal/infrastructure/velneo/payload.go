package velneo

import (
	"fmt"

	"github.com/jhoicas/ventas-sync/internal/domain/source"
	"github.com/jhoicas/ventas-sync/pkg/fechas"
)

// createPayload es el cuerpo JSON del alta de un documento de venta en la
// fila de espera del servidor. Los campos fijos (ent_rel_tip, mon_c, cot,
// trm, dum, off, etc.) son los que espera el proceso remoto para este tipo
// de documento.
type createPayload struct {
	Emp          string           `json:"emp"`
	EmpDiv       string           `json:"emp_div"`
	NumDoc       string           `json:"num_doc"`
	Clt          int              `json:"clt"`
	Fpg          int              `json:"fpg"`
	Cmr          int              `json:"cmr"`
	Fch          string           `json:"fch"`
	Ser          int              `json:"ser"`
	Hor          int              `json:"hor"`
	Pai          string           `json:"pai"`
	EntRelTip    int              `json:"ent_rel_tip"`
	MonC         int              `json:"mon_c"`
	Cot          int              `json:"cot"`
	FchVto       string           `json:"fch_vto"`
	PreConIvaInc int              `json:"pre_con_iva_inc"`
	Trm          int              `json:"trm"`
	Dum          int              `json:"dum"`
	Alm          string           `json:"alm"`
	Fac          string           `json:"fac"`
	Off          int              `json:"off"`
	Detalles     []detallePayload `json:"detalles"`
	Recibos      []reciboPayload  `json:"recibos"`
	Usr          int              `json:"usr"`
	AutUsr       int              `json:"aut_usr"`
	PorDto       int              `json:"por_dto"`
}

type detallePayload struct {
	Indice    int     `json:"_indice"`
	Alm       string  `json:"alm"`
	Art       string  `json:"art"`
	UndMed    int     `json:"und_med"`
	CanUnd    float64 `json:"can_und"`
	Can       float64 `json:"can"`
	EmpDiv    string  `json:"emp_div"`
	Emp       string  `json:"emp"`
	Fch       string  `json:"fch"`
	Hor       int     `json:"hor"`
	Pre       float64 `json:"pre"`
	PorDto    float64 `json:"por_dto"`
	RegIvaVta int     `json:"reg_iva_vta"`
	Clt       int     `json:"clt"`
	MovTip    string  `json:"mov_tip"`
	CalArr    int     `json:"cal_arr"`
	Desc      string  `json:"desc"`
}

type reciboPayload struct {
	Indice    int     `json:"_indice"`
	Ser       int     `json:"ser"`
	Fch       string  `json:"fch"`
	RefRecibo string  `json:"ref_recibo"`
	Importe   float64 `json:"importe"`
	CajaBco   int     `json:"caja_bco"`
	Tienda    string  `json:"tienda"`
	RefTipo   string  `json:"ref_tipo"`
	Hora      string  `json:"hora"`
	NumDoc    string  `json:"num_doc"`
	Fpg       int     `json:"fpg"`
}

// buildCreatePayload arma el cuerpo del alta a partir de un documento
// mapeado: fechas normalizadas a ISO, identificadores numéricos como cadena
// y partidas/recibos ordenados con su índice 1-based, que después permite
// re-asociar los acuses del servidor con las filas de origen.
func buildCreatePayload(doc *source.SalesDocument) createPayload {
	fch := fechas.AISO(doc.Fecha)

	detalles := make([]detallePayload, 0, len(doc.Detalles))
	for i, d := range doc.Detalles {
		// El precio que espera el servidor es el base más los dos
		// componentes de descuento del origen.
		pre := d.Precio.Add(d.NDescto1).Add(d.NDescto2)
		detalles = append(detalles, detallePayload{
			Indice:    i + 1,
			Alm:       d.Alm,
			Art:       d.Art,
			UndMed:    1,
			CanUnd:    d.Cantidad.InexactFloat64(),
			Can:       d.Cantidad.InexactFloat64(),
			EmpDiv:    d.EmpDiv,
			Emp:       d.Emp,
			Fch:       fch,
			Hor:       d.Hor,
			Pre:       pre.InexactFloat64(),
			PorDto:    d.Descuento.InexactFloat64(),
			RegIvaVta: d.RegIvaVta,
			Clt:       d.Clt,
			MovTip:    "C",
			CalArr:    1,
			Desc:      d.DescAdi,
		})
	}

	recibos := make([]reciboPayload, 0, len(doc.Recibos))
	for i, r := range doc.Recibos {
		recibos = append(recibos, reciboPayload{
			Indice:    i + 1,
			Ser:       3,
			Fch:       fch,
			RefRecibo: r.RefRecibo,
			Importe:   r.Importe.InexactFloat64(),
			CajaBco:   r.CajaBco,
			Tienda:    r.Tienda,
			RefTipo:   r.RefTipo,
			Hora:      r.Hora,
			NumDoc:    fmt.Sprintf("%s-%s-%s-%s", r.Plaza, r.Tienda, r.RefTipo, r.RefRecibo),
			Fpg:       r.Fpg,
		})
	}

	return createPayload{
		Emp:          doc.Emp,
		EmpDiv:       doc.EmpDiv,
		NumDoc:       doc.Folio,
		Clt:          doc.Clt,
		Fpg:          doc.Fpg,
		Cmr:          doc.Cmr,
		Fch:          fch,
		Ser:          doc.Ser,
		Hor:          doc.Hor,
		Pai:          doc.Pai,
		EntRelTip:    1,
		MonC:         1,
		Cot:          1,
		FchVto:       fch,
		PreConIvaInc: 0,
		Trm:          1,
		Dum:          1,
		Alm:          doc.Alm,
		Fac:          "1",
		Off:          1,
		Detalles:     detalles,
		Recibos:      recibos,
		Usr:          1,
		AutUsr:       1,
		PorDto:       0,
	}
}
