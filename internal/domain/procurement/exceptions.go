package procurement

import (
	"fmt"
	"sort"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// Rule regla de anomalía: función pura sobre un registro que produce cero o más hallazgos.
type Rule func(rec entity.ReplenishmentRecord, th Thresholds) []entity.ExceptionFinding

// DefaultRules reglas en el orden canónico de detección.
func DefaultRules() []Rule {
	return []Rule{
		HighDemandRule,
		LowStockRule,
		MissingSupplierRule,
		HighValueOrderRule,
		DemandStockGapRule,
	}
}

// Detector ejecuta cada regla sobre el conjunto completo de registros y consolida el reporte.
type Detector struct {
	thresholds Thresholds
	rules      []Rule
}

// NewDetector construye el detector; si no se pasan reglas usa DefaultRules.
func NewDetector(th Thresholds, rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Detector{thresholds: th, rules: rules}
}

// Detect recorre los registros una vez por regla, une los hallazgos y los ordena de
// forma estable por severidad (CRITICAL primero). Empates conservan el orden de detección.
func (d *Detector) Detect(records []entity.ReplenishmentRecord) entity.ExceptionReport {
	findings := make([]entity.ExceptionFinding, 0)
	for _, rule := range d.rules {
		for _, rec := range records {
			findings = append(findings, rule(rec, d.thresholds)...)
		}
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Rank() < findings[j].Severity.Rank()
	})
	return entity.ExceptionReport{
		Summary:  SummarizeFindings(records, findings),
		Findings: findings,
	}
}

// SummarizeFindings calcula las estadísticas del reporte sobre el conjunto final.
func SummarizeFindings(records []entity.ReplenishmentRecord, findings []entity.ExceptionFinding) entity.ExceptionSummary {
	s := entity.ExceptionSummary{
		TotalSKUsAnalyzed: len(records),
		TotalExceptions:   len(findings),
		BySeverity:        make(map[entity.Severity]int, len(entity.Severities)),
		ByType:            make(map[entity.ExceptionType]int, len(entity.ExceptionTypes)),
	}
	for _, sev := range entity.Severities {
		s.BySeverity[sev] = 0
	}
	for _, t := range entity.ExceptionTypes {
		s.ByType[t] = 0
	}
	for _, f := range findings {
		s.BySeverity[f.Severity]++
		s.ByType[f.Type]++
	}

	suppliers := make(map[string]struct{})
	for _, rec := range records {
		s.TotalDemand += rec.TotalDemand
		s.TotalOrderQuantity += rec.OrderQuantity
		if rec.HasSupplier() {
			suppliers[*rec.SupplierName] = struct{}{}
		}
	}
	s.UniqueSuppliers = len(suppliers)
	return s
}

// HighDemandRule demanda total > T. CRITICAL si supera T * HighDemandCritical.
func HighDemandRule(rec entity.ReplenishmentRecord, th Thresholds) []entity.ExceptionFinding {
	if rec.TotalDemand <= th.HighDemand {
		return nil
	}
	severity := entity.SeverityHigh
	if float64(rec.TotalDemand) > float64(th.HighDemand)*th.HighDemandCritical {
		severity = entity.SeverityCritical
	}
	return []entity.ExceptionFinding{newFinding(rec, entity.ExceptionHighDemand, severity,
		float64(rec.TotalDemand), float64(th.HighDemand),
		fmt.Sprintf("Demanda de %d unidades supera el umbral de %d", rec.TotalDemand, th.HighDemand),
		"Contactar al proveedor para entrega urgente o buscar abastecimiento alternativo",
	)}
}

// LowStockRule stock/demanda < R_low (solo si hay demanda). CRITICAL si < R_critical.
func LowStockRule(rec entity.ReplenishmentRecord, th Thresholds) []entity.ExceptionFinding {
	if rec.TotalDemand <= 0 {
		return nil
	}
	ratio := float64(rec.AvailableStock) / float64(rec.TotalDemand)

	var (
		severity  entity.Severity
		threshold float64
		label     string
	)
	switch {
	case ratio < th.CriticalStockRatio:
		severity, threshold, label = entity.SeverityCritical, th.CriticalStockRatio, "crítico"
	case ratio < th.LowStockRatio:
		severity, threshold, label = entity.SeverityHigh, th.LowStockRatio, "bajo"
	default:
		return nil
	}
	return []entity.ExceptionFinding{newFinding(rec, entity.ExceptionLowStock, severity,
		ratio, threshold,
		fmt.Sprintf("Stock al %.1f%% de la demanda (%s < %.0f%%)", ratio*100, label, threshold*100),
		"Priorizar la reposición y revisar el nivel de stock de seguridad",
	)}
}

// MissingSupplierRule registro sin proveedor asignado.
func MissingSupplierRule(rec entity.ReplenishmentRecord, _ Thresholds) []entity.ExceptionFinding {
	if rec.HasSupplier() {
		return nil
	}
	return []entity.ExceptionFinding{{
		Type:           entity.ExceptionMissingSupplier,
		Severity:       entity.SeverityHigh,
		SKU:            rec.SKU,
		ProductName:    rec.ProductName,
		Category:       rec.Category,
		Description:    fmt.Sprintf("SKU sin proveedor asignado; %d unidades en riesgo", rec.OrderQuantity),
		Recommendation: "Actualizar los datos maestros con un proveedor válido",
	}}
}

// HighValueOrderRule order_quantity > U.
func HighValueOrderRule(rec entity.ReplenishmentRecord, th Thresholds) []entity.ExceptionFinding {
	if rec.OrderQuantity <= th.HighValueUnits {
		return nil
	}
	return []entity.ExceptionFinding{newFinding(rec, entity.ExceptionHighValueOrder, entity.SeverityMedium,
		float64(rec.OrderQuantity), float64(th.HighValueUnits),
		fmt.Sprintf("Orden de %d unidades (%d cajas) es de alto volumen", rec.OrderQuantity, rec.CasesNeeded),
		"Verificar capacidad con el proveedor; considerar entregas parciales",
	)}
}

// DemandStockGapRule net_demand/stock > ratio configurado (solo si hay stock > 0).
func DemandStockGapRule(rec entity.ReplenishmentRecord, th Thresholds) []entity.ExceptionFinding {
	if rec.AvailableStock <= 0 {
		return nil
	}
	gap := float64(rec.NetDemand) / float64(rec.AvailableStock)
	if gap <= th.DemandGapRatio {
		return nil
	}
	return []entity.ExceptionFinding{newFinding(rec, entity.ExceptionDemandStockGap, entity.SeverityMedium,
		gap, th.DemandGapRatio,
		fmt.Sprintf("La demanda neta es %.1fx el stock disponible", gap),
		"Revisar la precisión del pronóstico y la frecuencia de reposición",
	)}
}

func newFinding(
	rec entity.ReplenishmentRecord,
	typ entity.ExceptionType,
	severity entity.Severity,
	metric, threshold float64,
	description, recommendation string,
) entity.ExceptionFinding {
	return entity.ExceptionFinding{
		Type:           typ,
		Severity:       severity,
		SKU:            rec.SKU,
		ProductName:    rec.ProductName,
		Category:       rec.Category,
		SupplierName:   entity.StringValue(rec.SupplierName),
		MetricValue:    &metric,
		Threshold:      &threshold,
		Description:    description,
		Recommendation: recommendation,
	}
}
