package entity

import "time"

// ErrorEntry es una entrada del diario de fallos (solo inserción).
type ErrorEntry struct {
	ID       int64
	Mensaje  string
	Origen   string
	CreadoEn time.Time
}
