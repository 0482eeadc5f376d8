package entity

import "github.com/shopspring/decimal"

// ReplenishmentRecord necesidad neta de reposición de un SKU para una corrida.
// Solo existen registros con NetDemand > 0 y CaseSize > 0; se construye una vez por
// corrida y no se modifica después.
type ReplenishmentRecord struct {
	SKU              string
	ProductName      string
	Category         string
	TotalDemand      int64
	AvailableStock   int64
	SafetyStockLevel int64
	NetDemand        int64 // TotalDemand - AvailableStock + SafetyStockLevel
	CaseSize         int64
	CasesNeeded      int64 // ceil(NetDemand / CaseSize)
	OrderQuantity    int64 // max(CasesNeeded * CaseSize, MinimumOrderQty)
	MinimumOrderQty  int64
	SupplierID       *string
	SupplierName     *string
	UnitPrice        decimal.Decimal // precio promedio ponderado de venta del día
}

// HasSupplier indica si el registro tiene proveedor asignado (nombre no vacío).
func (r ReplenishmentRecord) HasSupplier() bool {
	return !IsBlank(r.SupplierName)
}
