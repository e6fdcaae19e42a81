package entity

// LineItem representa el estado de conciliación de una partida de venta.
// La clave natural es (Folio, Indice) donde Indice es la posición 1-based
// de la partida en el documento original; así se cruzan las respuestas del
// servidor (campo _indice) con las filas de origen.
type LineItem struct {
	Folio      string
	Indice     int
	VelneoID   *int64
	Ref        string
	Art        string
	DetailHash string
	Estado     string
	Accion     string
}
