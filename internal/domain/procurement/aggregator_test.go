package procurement_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
)

func TestAggregateDemand_SumaPorSKU(t *testing.T) {
	lines := []entity.OrderLine{
		line("SKU-1", 5, "1.50"),
		line("SKU-2", 3, "10"),
		line("SKU-1", 7, "1.50"),
	}

	demand := procurement.AggregateDemand(lines)

	assert.Equal(t, map[string]int64{"SKU-1": 12, "SKU-2": 3}, demand)
}

func TestAggregateDemand_OrdenNoAfectaResultado(t *testing.T) {
	a := []entity.OrderLine{line("A", 1, "1"), line("B", 2, "1"), line("A", 3, "1")}
	b := []entity.OrderLine{a[2], a[0], a[1]}

	assert.Equal(t, procurement.AggregateDemand(a), procurement.AggregateDemand(b))
}

func TestAggregateDemandValue_AritmeticaDecimal(t *testing.T) {
	lines := []entity.OrderLine{
		line("SKU-1", 3, "0.10"),
		line("SKU-1", 1, "0.20"),
	}

	value := procurement.AggregateDemandValue(lines)

	assert.True(t, decimal.RequireFromString("0.50").Equal(value["SKU-1"]),
		"0.30 + 0.20 debe ser exactamente 0.50, obtenido %s", value["SKU-1"])
}

func TestAggregateStock_SumaTodasLasBodegas(t *testing.T) {
	records := []entity.StockRecord{
		stockRow("WH-1", "SKU-1", 10),
		stockRow("WH-2", "SKU-1", 15),
		stockRow("WH-1", "SKU-2", -4),
	}

	stock := procurement.AggregateStock(records)

	assert.Equal(t, int64(25), stock["SKU-1"])
	assert.Equal(t, int64(-4), stock["SKU-2"])
	_, ok := stock["SKU-3"]
	assert.False(t, ok, "un SKU sin registros no debe aparecer")
}
