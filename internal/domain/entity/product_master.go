package entity

import "strings"

// ProductMaster fila de datos maestros de producto + regla de reposición + proveedor.
// Los campos opcionales son punteros: nil significa "ausente" en la fuente.
type ProductMaster struct {
	SKU              string // clave única
	ProductName      string
	Category         string
	CaseSize         *int64 // múltiplo de empaque; nil o <= 0 no permite redondear
	MinimumOrderQty  *int64 // MOQ del proveedor
	SafetyStockLevel *int64
	SupplierID       *string
	SupplierName     *string
}

// HasCaseSize indica si el producto tiene un tamaño de caja utilizable (> 0).
func (p ProductMaster) HasCaseSize() bool {
	return p.CaseSize != nil && *p.CaseSize > 0
}

// Int64Ptr helper para construir campos opcionales.
func Int64Ptr(v int64) *int64 { return &v }

// StringPtr helper para construir campos opcionales.
func StringPtr(s string) *string { return &s }

// StringValue devuelve el valor del puntero o "" si es nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Int64Value devuelve el valor del puntero o 0 si es nil.
func Int64Value(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// IsBlank reporta si un campo opcional de texto está ausente o vacío.
func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
