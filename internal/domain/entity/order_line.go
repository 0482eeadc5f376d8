package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine representa una línea de venta exportada por un punto de venta (POS).
// Es inmutable una vez leída.
type OrderLine struct {
	OrderID        string
	SKU            string
	Quantity       int64           // unidades vendidas, siempre > 0
	UnitPrice      decimal.Decimal // precio de venta unitario (>= 0)
	OriginLocation string          // POS de origen
	Date           time.Time
}

// Value devuelve Quantity * UnitPrice.
func (l OrderLine) Value() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}
