package procurement

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/pkg/textnorm"
)

// OrderBuildResult órdenes generadas más los registros excluidos por falta de proveedor.
type OrderBuildResult struct {
	Orders              []entity.SupplierOrder
	MissingSupplier     int      // registros sin supplier_name (no se pierden: se cuentan)
	MissingSupplierSKUs []string // SKUs excluidos, ordenados
}

// TotalUnits suma de unidades de todas las órdenes.
func (r OrderBuildResult) TotalUnits() int64 {
	var total int64
	for _, o := range r.Orders {
		total += o.Summary.TotalUnits
	}
	return total
}

// OrderBuilder agrupa los registros de reposición por proveedor y arma las órdenes.
type OrderBuilder struct {
	policy OrderPolicy
}

// NewOrderBuilder construye el builder con la política de órdenes.
func NewOrderBuilder(policy OrderPolicy) *OrderBuilder {
	return &OrderBuilder{policy: policy}
}

type supplierKey struct {
	name string
	id   string
}

// Build genera una orden por cada par (supplier_name, supplier_id) presente.
// Los registros sin supplier_name se excluyen y se reportan en el resultado.
// Misma entrada y misma fecha producen exactamente las mismas órdenes (mismos IDs).
func (b *OrderBuilder) Build(records []entity.ReplenishmentRecord, runDate time.Time) OrderBuildResult {
	orderDate := DateOnly(runDate)
	groups := make(map[supplierKey][]entity.ReplenishmentRecord)
	var res OrderBuildResult

	for _, rec := range records {
		if !rec.HasSupplier() {
			res.MissingSupplier++
			res.MissingSupplierSKUs = append(res.MissingSupplierSKUs, rec.SKU)
			continue
		}
		k := supplierKey{name: *rec.SupplierName, id: entity.StringValue(rec.SupplierID)}
		groups[k] = append(groups[k], rec)
	}
	sort.Strings(res.MissingSupplierSKUs)

	keys := make([]supplierKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].id < keys[j].id
	})

	sequences := make(map[string]int)
	res.Orders = make([]entity.SupplierOrder, 0, len(keys))
	for _, k := range keys {
		idKey := SupplierKey(k.id)
		sequences[idKey]++
		res.Orders = append(res.Orders, b.buildOrder(k, groups[k], orderDate, OrderID(orderDate, idKey, sequences[idKey])))
	}
	return res
}

func (b *OrderBuilder) buildOrder(k supplierKey, recs []entity.ReplenishmentRecord, orderDate time.Time, orderID string) entity.SupplierOrder {
	sorted := append([]entity.ReplenishmentRecord(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SKU < sorted[j].SKU })

	items := make([]entity.SupplierOrderLine, 0, len(sorted))
	for i, rec := range sorted {
		items = append(items, entity.SupplierOrderLine{
			LineNumber:      i + 1,
			SKU:             rec.SKU,
			ProductName:     rec.ProductName,
			Category:        rec.Category,
			QuantityOrdered: rec.OrderQuantity,
			Cases:           CasesNeeded(rec.OrderQuantity, rec.CaseSize),
			CaseSize:        rec.CaseSize,
			NetDemand:       rec.NetDemand,
			AvailableStock:  rec.AvailableStock,
			TotalDemand:     rec.TotalDemand,
			UnitPrice:       rec.UnitPrice,
			EstimatedValue:  rec.UnitPrice.Mul(decimal.NewFromInt(rec.OrderQuantity)),
		})
	}

	summary := Summarize(items)
	return entity.SupplierOrder{
		OrderID:               orderID,
		SupplierID:            k.id,
		SupplierName:          k.name,
		OrderDate:             orderDate,
		RequestedDeliveryDate: orderDate.AddDate(0, 0, b.policy.LeadTimeDays),
		Status:                entity.OrderStatusPending,
		Priority:              b.Priority(summary.TotalUnits),
		Items:                 items,
		Summary:               summary,
	}
}

// Priority clasifica la orden por volumen: HIGH > HighPriorityUnits, MEDIUM > MediumPriorityUnits.
func (b *OrderBuilder) Priority(totalUnits int64) entity.OrderPriority {
	switch {
	case totalUnits > b.policy.HighPriorityUnits:
		return entity.PriorityHigh
	case totalUnits > b.policy.MediumPriorityUnits:
		return entity.PriorityMedium
	default:
		return entity.PriorityNormal
	}
}

// Summarize calcula los totales de la orden únicamente a partir de sus líneas.
func Summarize(items []entity.SupplierOrderLine) entity.OrderSummary {
	s := entity.OrderSummary{TotalLineItems: len(items), TotalEstimatedValue: decimal.Zero}
	for _, it := range items {
		s.TotalUnits += it.QuantityOrdered
		s.TotalCases += it.Cases
		s.TotalEstimatedValue = s.TotalEstimatedValue.Add(it.EstimatedValue)
	}
	return s
}

// SupplierKey normaliza el supplier_id para el ID de orden; "UNK" si queda vacío.
func SupplierKey(supplierID string) string {
	if k := textnorm.Key(supplierID); k != "" {
		return k
	}
	return "UNK"
}

// OrderID arma el identificador determinista ORD-YYYYMMDD-<proveedor>-<secuencia>.
func OrderID(orderDate time.Time, supplierKey string, seq int) string {
	return fmt.Sprintf("ORD-%s-%s-%03d", orderDate.Format("20060102"), supplierKey, seq)
}

// DateOnly trunca una fecha a medianoche UTC conservando año, mes y día.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
