package procurement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// CalculationResult salida del cálculo de demanda neta junto con los contadores de
// exclusión, que deben ser observables por el orquestador.
type CalculationResult struct {
	Records         []entity.ReplenishmentRecord
	SKUsEvaluated   int      // SKUs con demanda
	NonPositiveNet  int      // descartados por net_demand <= 0
	MissingCaseSize int      // descartados por case_size ausente o <= 0
	MissingMaster   int      // SKUs con demanda sin fila maestra
	ExcludedSKUs    []string // SKUs con net_demand > 0 descartados por case_size
	UnmatchedSKUs   []string // SKUs sin fila maestra
}

// TotalOrderQuantity suma de OrderQuantity de todos los registros.
func (r CalculationResult) TotalOrderQuantity() int64 {
	var total int64
	for _, rec := range r.Records {
		total += rec.OrderQuantity
	}
	return total
}

// CasesNeeded devuelve ceil(netDemand / caseSize) con aritmética entera: un múltiplo
// exacto no agrega una caja extra. Devuelve 0 si alguno de los valores no es positivo.
func CasesNeeded(netDemand, caseSize int64) int64 {
	if netDemand <= 0 || caseSize <= 0 {
		return 0
	}
	cases := netDemand / caseSize
	if netDemand%caseSize != 0 {
		cases++
	}
	return cases
}

// OrderQuantity aplica el redondeo a cajas y luego el mínimo de compra (MOQ).
func OrderQuantity(cases, caseSize, minimumOrderQty int64) int64 {
	qty := cases * caseSize
	if minimumOrderQty > qty {
		return minimumOrderQty
	}
	return qty
}

// Compute cruza la demanda agregada con el stock y los datos maestros y calcula la
// necesidad neta de reposición:
//
//	net_demand     = total_demand - available_stock + safety_stock
//	cases_needed   = ceil(net_demand / case_size)
//	order_quantity = max(cases_needed * case_size, moq)
//
// Solo se conservan filas con net_demand > 0 y case_size > 0; el resto se descarta y
// se cuenta. demandValue es opcional y alimenta el precio promedio del registro.
// La salida se ordena por demanda total descendente y luego por SKU.
func Compute(
	demand map[string]int64,
	stock map[string]int64,
	master *MasterSnapshot,
	demandValue map[string]decimal.Decimal,
) CalculationResult {
	skus := make([]string, 0, len(demand))
	for sku := range demand {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	res := CalculationResult{
		Records:       make([]entity.ReplenishmentRecord, 0, len(skus)),
		SKUsEvaluated: len(skus),
	}

	for _, sku := range skus {
		totalDemand := demand[sku]
		available := stock[sku] // ausente → 0

		row, found := master.Lookup(sku)
		if !found {
			res.MissingMaster++
			res.UnmatchedSKUs = append(res.UnmatchedSKUs, sku)
		}

		safety := entity.Int64Value(row.SafetyStockLevel)
		net := totalDemand - available + safety
		if net <= 0 {
			res.NonPositiveNet++
			continue
		}
		if !row.HasCaseSize() {
			res.MissingCaseSize++
			res.ExcludedSKUs = append(res.ExcludedSKUs, sku)
			continue
		}

		caseSize := *row.CaseSize
		moq := entity.Int64Value(row.MinimumOrderQty)
		cases := CasesNeeded(net, caseSize)

		res.Records = append(res.Records, entity.ReplenishmentRecord{
			SKU:              sku,
			ProductName:      row.ProductName,
			Category:         row.Category,
			TotalDemand:      totalDemand,
			AvailableStock:   available,
			SafetyStockLevel: safety,
			NetDemand:        net,
			CaseSize:         caseSize,
			CasesNeeded:      cases,
			OrderQuantity:    OrderQuantity(cases, caseSize, moq),
			MinimumOrderQty:  moq,
			SupplierID:       row.SupplierID,
			SupplierName:     row.SupplierName,
			UnitPrice:        averagePrice(demandValue[sku], totalDemand),
		})
	}

	sort.SliceStable(res.Records, func(i, j int) bool {
		a, b := res.Records[i], res.Records[j]
		if a.TotalDemand != b.TotalDemand {
			return a.TotalDemand > b.TotalDemand
		}
		return a.SKU < b.SKU
	})
	return res
}

func averagePrice(value decimal.Decimal, units int64) decimal.Decimal {
	if units <= 0 {
		return decimal.Zero
	}
	return value.Div(decimal.NewFromInt(units)).Round(4)
}
