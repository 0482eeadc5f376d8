package entity

import "time"

// StockRecord representa el stock disponible de un SKU en una bodega para una fecha.
// Una fila por (Location, SKU, Date). QuantityOnHand negativo se acepta con advertencia.
type StockRecord struct {
	Location       string
	SKU            string
	Date           time.Time
	QuantityOnHand int64
}
