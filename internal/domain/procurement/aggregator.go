package procurement

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// AggregateDemand suma las cantidades vendidas por SKU.
// El orden de las líneas no afecta el resultado.
func AggregateDemand(lines []entity.OrderLine) map[string]int64 {
	demand := make(map[string]int64)
	for _, l := range lines {
		demand[l.SKU] += l.Quantity
	}
	return demand
}

// AggregateDemandValue suma Quantity * UnitPrice por SKU (aritmética decimal).
func AggregateDemandValue(lines []entity.OrderLine) map[string]decimal.Decimal {
	value := make(map[string]decimal.Decimal)
	for _, l := range lines {
		value[l.SKU] = value[l.SKU].Add(l.Value())
	}
	return value
}

// AggregateStock suma el stock disponible por SKU en todas las bodegas.
// Los SKUs sin stock no aparecen; el cálculo de demanda neta los trata como 0.
func AggregateStock(records []entity.StockRecord) map[string]int64 {
	stock := make(map[string]int64)
	for _, r := range records {
		stock[r.SKU] += r.QuantityOnHand
	}
	return stock
}
