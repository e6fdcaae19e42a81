package entity

import "time"

// Receipt representa el estado de conciliación de un recibo de cobro asociado
// a un documento de venta. Los cuatro ids Velneo son referencias cruzadas
// opacas que devuelve el servidor al completar el cobro (sección CO).
type Receipt struct {
	Folio        string
	Indice       int
	VelneoID     *int64 // ID_DTL_COB_APL_T
	CtaCorID     *int64 // ID_CTA_COR_T
	DtlDocCobID  *int64 // ID_DTL_DOC_COB_T
	RboCobID     *int64 // ID_RBO_COB_T
	NumRef       string
	Estado       string
	Accion       string
	FechaEmision time.Time
}
