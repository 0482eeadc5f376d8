package procurement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
)

func detect(records ...entity.ReplenishmentRecord) entity.ExceptionReport {
	return procurement.NewDetector(procurement.DefaultThresholds()).Detect(records)
}

func findingTypes(report entity.ExceptionReport) []entity.ExceptionType {
	out := make([]entity.ExceptionType, 0, len(report.Findings))
	for _, f := range report.Findings {
		out = append(out, f.Type)
	}
	return out
}

// Escenario C: demanda 2500, stock 100.
func TestDetect_EscenarioC(t *testing.T) {
	rec := record("SKU-2", 2500, 100, 2400, 24, 100, 2400, "Acme")

	report := detect(rec)

	require.Len(t, report.Findings, 3)
	low := report.Findings[0]
	assert.Equal(t, entity.ExceptionLowStock, low.Type)
	assert.Equal(t, entity.SeverityCritical, low.Severity)
	require.NotNil(t, low.MetricValue)
	assert.InDelta(t, 0.04, *low.MetricValue, 1e-9)
	assert.InDelta(t, 0.1, *low.Threshold, 1e-9)

	high := report.Findings[1]
	assert.Equal(t, entity.ExceptionHighDemand, high.Type)
	assert.Equal(t, entity.SeverityHigh, high.Severity, "2500 <= 1.5 * 2000")

	assert.Equal(t, entity.ExceptionDemandStockGap, report.Findings[2].Type)
	assert.Equal(t, entity.SeverityMedium, report.Findings[2].Severity)
}

func TestHighDemandRule_CriticoSobreUnoPuntoCinco(t *testing.T) {
	th := procurement.DefaultThresholds()

	assert.Empty(t, procurement.HighDemandRule(record("A", 2000, 5000, 1, 1, 1, 1, "X"), th))
	got := procurement.HighDemandRule(record("A", 3001, 5000, 1, 1, 1, 1, "X"), th)
	require.Len(t, got, 1)
	assert.Equal(t, entity.SeverityCritical, got[0].Severity)
	got = procurement.HighDemandRule(record("A", 3000, 5000, 1, 1, 1, 1, "X"), th)
	require.Len(t, got, 1)
	assert.Equal(t, entity.SeverityHigh, got[0].Severity)
}

func TestLowStockRule_SinDemandaNoDispara(t *testing.T) {
	th := procurement.DefaultThresholds()

	assert.Empty(t, procurement.LowStockRule(record("A", 0, 0, 1, 1, 1, 1, "X"), th))
	got := procurement.LowStockRule(record("A", 100, 20, 80, 1, 80, 80, "X"), th)
	require.Len(t, got, 1)
	assert.Equal(t, entity.SeverityHigh, got[0].Severity)
	assert.InDelta(t, 0.3, *got[0].Threshold, 1e-9)
	assert.Empty(t, procurement.LowStockRule(record("A", 100, 30, 70, 1, 70, 70, "X"), th))
}

func TestMissingSupplierRule_SinMetrica(t *testing.T) {
	got := procurement.MissingSupplierRule(record("A", 10, 0, 10, 1, 10, 10, ""), procurement.DefaultThresholds())

	require.Len(t, got, 1)
	assert.Equal(t, entity.SeverityHigh, got[0].Severity)
	assert.Nil(t, got[0].MetricValue)
	assert.Nil(t, got[0].Threshold)
}

func TestHighValueOrderRule_YGap(t *testing.T) {
	th := procurement.DefaultThresholds()

	assert.Empty(t, procurement.HighValueOrderRule(record("A", 10, 0, 10, 1, 5000, 5000, "X"), th))
	assert.Len(t, procurement.HighValueOrderRule(record("A", 10, 0, 10, 1, 5001, 5001, "X"), th), 1)

	assert.Empty(t, procurement.DemandStockGapRule(record("A", 10, 0, 10, 1, 10, 10, "X"), th), "stock 0 no evalúa gap")
	assert.Empty(t, procurement.DemandStockGapRule(record("A", 40, 10, 30, 1, 30, 30, "X"), th), "3.0 no supera 3.0")
	assert.Len(t, procurement.DemandStockGapRule(record("A", 41, 10, 31, 1, 31, 31, "X"), th), 1)
}

// Un registro puede producir hallazgos de varios tipos; el orden es por severidad y
// dentro de la misma severidad se conserva el orden de detección (regla, luego registro).
func TestDetect_OrdenPorSeveridadEstable(t *testing.T) {
	records := []entity.ReplenishmentRecord{
		// LOW_STOCK critical, MISSING_SUPPLIER high, HIGH_VALUE_ORDER medium
		record("A", 10, 0, 10, 1, 6000, 6000, ""),
		// HIGH_DEMAND high
		record("B", 2100, 1000, 1100, 1, 1100, 1100, "X"),
	}

	report := detect(records...)

	assert.Equal(t, []entity.ExceptionType{
		entity.ExceptionLowStock,
		entity.ExceptionHighDemand,
		entity.ExceptionMissingSupplier,
		entity.ExceptionHighValueOrder,
	}, findingTypes(report))
	for i := 1; i < len(report.Findings); i++ {
		assert.LessOrEqual(t, report.Findings[i-1].Severity.Rank(), report.Findings[i].Severity.Rank())
	}
}

func TestDetect_Resumen(t *testing.T) {
	records := []entity.ReplenishmentRecord{
		record("A", 10, 0, 10, 1, 6000, 6000, ""),
		record("B", 2100, 1000, 1100, 1, 1100, 1100, "X"),
		record("C", 5, 5, 1, 1, 1, 1, "X"),
	}

	s := detect(records...).Summary

	assert.Equal(t, 3, s.TotalSKUsAnalyzed)
	assert.Equal(t, 4, s.TotalExceptions)
	assert.Equal(t, 1, s.BySeverity[entity.SeverityCritical])
	assert.Equal(t, 2, s.BySeverity[entity.SeverityHigh])
	assert.Equal(t, 1, s.BySeverity[entity.SeverityMedium])
	assert.Equal(t, 0, s.BySeverity[entity.SeverityLow])
	assert.Len(t, s.ByType, len(entity.ExceptionTypes))
	assert.Equal(t, 0, s.ByType[entity.ExceptionDemandStockGap])
	assert.Equal(t, int64(2115), s.TotalDemand)
	assert.Equal(t, int64(7101), s.TotalOrderQuantity)
	assert.Equal(t, 1, s.UniqueSuppliers)
}

func TestDetect_SinRegistros(t *testing.T) {
	report := detect()

	assert.Empty(t, report.Findings)
	assert.NotNil(t, report.Findings)
	assert.Equal(t, 0, report.Summary.TotalExceptions)
}
