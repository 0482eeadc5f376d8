package procurement_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var runDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func line(sku string, qty int64, price string) entity.OrderLine {
	return entity.OrderLine{
		OrderID:        "POS-001-" + sku,
		SKU:            sku,
		Quantity:       qty,
		UnitPrice:      decimal.RequireFromString(price),
		OriginLocation: "POS-001",
		Date:           runDate,
	}
}

func stockRow(location, sku string, qty int64) entity.StockRecord {
	return entity.StockRecord{Location: location, SKU: sku, Date: runDate, QuantityOnHand: qty}
}

// master construye una fila maestra con proveedor.
func master(sku string, caseSize, moq, safety int64, supplierID, supplierName string) entity.ProductMaster {
	return entity.ProductMaster{
		SKU:              sku,
		ProductName:      "Producto " + sku,
		Category:         "Abarrotes",
		CaseSize:         entity.Int64Ptr(caseSize),
		MinimumOrderQty:  entity.Int64Ptr(moq),
		SafetyStockLevel: entity.Int64Ptr(safety),
		SupplierID:       entity.StringPtr(supplierID),
		SupplierName:     entity.StringPtr(supplierName),
	}
}

// record construye un ReplenishmentRecord ya calculado.
func record(sku string, demand, stock, net, caseSize, cases, qty int64, supplier string) entity.ReplenishmentRecord {
	rec := entity.ReplenishmentRecord{
		SKU:            sku,
		ProductName:    "Producto " + sku,
		Category:       "Abarrotes",
		TotalDemand:    demand,
		AvailableStock: stock,
		NetDemand:      net,
		CaseSize:       caseSize,
		CasesNeeded:    cases,
		OrderQuantity:  qty,
		UnitPrice:      decimal.NewFromInt(2),
	}
	if supplier != "" {
		rec.SupplierName = entity.StringPtr(supplier)
		rec.SupplierID = entity.StringPtr("SUP-" + supplier)
	}
	return rec
}
