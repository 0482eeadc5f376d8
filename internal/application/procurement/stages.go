package procurement

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
)

// StageOutcome resultado uniforme de una etapa: (resultado, éxito, contadores).
type StageOutcome[T any] struct {
	Result T
	OK     bool
	Counts map[string]int64
	Err    error
}

func succeeded[T any](result T, counts map[string]int64) StageOutcome[T] {
	return StageOutcome[T]{Result: result, OK: true, Counts: counts}
}

func failed[T any](err error, counts map[string]int64) StageOutcome[T] {
	return StageOutcome[T]{Err: err, Counts: counts}
}

// runStage ejecuta fn midiendo tiempos y registrando en el log; devuelve el resultado
// de la etapa sin agregarlo al RunContext (el llamador decide el orden).
func runStage[T any](rc *RunContext, name entity.StageName, fn func() StageOutcome[T]) (StageOutcome[T], entity.StageResult) {
	log := rc.Log.With().Str("stage", string(name)).Logger()
	log.Info().Msg("etapa iniciada")

	started := rc.now()
	out := fn()
	res := entity.StageResult{
		Name:       name,
		Status:     entity.StageSuccess,
		Counts:     out.Counts,
		StartedAt:  started,
		FinishedAt: rc.now(),
	}
	if !out.OK {
		res.Status = entity.StageFailed
		if out.Err != nil {
			res.Error = out.Err.Error()
		}
		log.Error().Err(out.Err).Interface("counts", out.Counts).Msg("etapa fallida")
		return out, res
	}
	log.Info().Interface("counts", out.Counts).Dur("duration", res.FinishedAt.Sub(started)).Msg("etapa completada")
	return out, res
}

// Inputs datos crudos del día ya filtrados por validación (si se ejecutó).
type Inputs struct {
	OrderLines   []entity.OrderLine
	StockRecords []entity.StockRecord
}

// ── Validación ───────────────────────────────────────────────────────────────

// Validate carga los datos del día y aplica las reglas de calidad. Los registros con
// errores se excluyen y se acumulan en el RunContext; la etapa solo falla si la fuente falla.
func (uc *PipelineUseCase) Validate(ctx context.Context, rc *RunContext) StageOutcome[Inputs] {
	in, counts, err := uc.loadInputs(ctx, rc, true)
	if err != nil {
		return failed[Inputs](err, counts)
	}
	return succeeded(in, counts)
}

func (uc *PipelineUseCase) loadInputs(ctx context.Context, rc *RunContext, validate bool) (Inputs, map[string]int64, error) {
	counts := map[string]int64{}
	var in Inputs

	orderBatches, orderIssues, err := uc.raw.LoadOrderLines(ctx, rc.Date)
	if err != nil {
		return in, counts, fmt.Errorf("leer órdenes: %w", err)
	}
	stockBatches, stockIssues, err := uc.raw.LoadStockRecords(ctx, rc.Date)
	if err != nil {
		return in, counts, fmt.Errorf("leer stock: %w", err)
	}

	report := procurement.ValidationReport{}
	report.Add(orderIssues...)
	report.Add(stockIssues...)

	for _, b := range orderBatches {
		counts["order_lines_read"] += int64(len(b.Lines))
		lines := b.Lines
		if validate {
			var issues []procurement.ValidationIssue
			lines, issues = procurement.ValidateOrderLines(b.Source, b.Lines)
			report.Add(issues...)
		}
		in.OrderLines = append(in.OrderLines, lines...)
	}
	for _, b := range stockBatches {
		counts["stock_records_read"] += int64(len(b.Records))
		records := b.Records
		if validate {
			var issues []procurement.ValidationIssue
			records, issues = procurement.ValidateStockRecords(b.Source, b.Records)
			report.Add(issues...)
		}
		in.StockRecords = append(in.StockRecords, records...)
	}

	counts["order_files"] = int64(len(orderBatches))
	counts["stock_files"] = int64(len(stockBatches))
	counts["order_lines_valid"] = int64(len(in.OrderLines))
	counts["stock_records_valid"] = int64(len(in.StockRecords))
	counts["errors"] = int64(report.Errors())
	counts["warnings"] = int64(report.Warnings())

	rc.AddIssues(report.Issues...)
	for _, issue := range report.Issues {
		ev := rc.Log.Warn()
		if issue.Level == procurement.IssueWarning {
			ev = rc.Log.Debug()
		}
		ev.Str("source", issue.Source).Int("index", issue.Index).Str("field", issue.Field).Msg(issue.Message)
	}
	return in, counts, nil
}

// ── Cálculo de demanda ───────────────────────────────────────────────────────

// ComputeDemand agrega demanda y stock, cruza con el snapshot de datos maestros y
// persiste la tabla de reposición. Si in es nil (validación omitida) carga los datos
// sin filtrar. Sin líneas de venta o sin registros resultantes la etapa falla.
func (uc *PipelineUseCase) ComputeDemand(ctx context.Context, rc *RunContext, in *Inputs) StageOutcome[procurement.CalculationResult] {
	counts := map[string]int64{}

	// 1. Datos crudos
	if in == nil {
		loaded, loadCounts, err := uc.loadInputs(ctx, rc, false)
		if err != nil {
			return failed[procurement.CalculationResult](err, loadCounts)
		}
		in = &loaded
	}
	counts["order_lines"] = int64(len(in.OrderLines))
	counts["stock_records"] = int64(len(in.StockRecords))
	if len(in.OrderLines) == 0 {
		return failed[procurement.CalculationResult](domain.ErrEmptyInput, counts)
	}

	// 2. Snapshot de datos maestros (una sola lectura por corrida)
	rows, err := uc.master.LoadMasterData(ctx)
	if err != nil {
		return failed[procurement.CalculationResult](fmt.Errorf("cargar datos maestros: %w", err), counts)
	}
	snapshot := procurement.NewMasterSnapshot(rows)
	counts["master_rows"] = int64(snapshot.Len())
	if dups := snapshot.Duplicates(); len(dups) > 0 {
		counts["master_duplicates"] = int64(len(dups))
		rc.Log.Warn().Strs("skus", dups).Msg("SKUs duplicados en datos maestros; se conserva la primera fila")
	}

	// 3. Agregación y demanda neta
	calc := procurement.Compute(
		procurement.AggregateDemand(in.OrderLines),
		procurement.AggregateStock(in.StockRecords),
		snapshot,
		procurement.AggregateDemandValue(in.OrderLines),
	)
	counts["skus_evaluated"] = int64(calc.SKUsEvaluated)
	counts["records"] = int64(len(calc.Records))
	counts["excluded_non_positive"] = int64(calc.NonPositiveNet)
	counts["excluded_missing_case_size"] = int64(calc.MissingCaseSize)
	counts["missing_master"] = int64(calc.MissingMaster)
	counts["total_order_quantity"] = calc.TotalOrderQuantity()
	if calc.MissingCaseSize > 0 {
		rc.Log.Warn().Int("count", calc.MissingCaseSize).Strs("skus", calc.ExcludedSKUs).
			Msg("SKUs excluidos por case_size ausente o inválido")
	}
	if calc.MissingMaster > 0 {
		rc.Log.Warn().Int("count", calc.MissingMaster).Strs("skus", calc.UnmatchedSKUs).
			Msg("SKUs con demanda sin datos maestros")
	}
	if len(calc.Records) == 0 {
		return failed[procurement.CalculationResult](domain.ErrNoReplenishment, counts)
	}

	// 4. Persistir tabla de reposición
	if _, err := uc.artifacts.SaveReplenishment(ctx, rc.Date, calc.Records); err != nil {
		return failed[procurement.CalculationResult](fmt.Errorf("guardar reposición: %w", err), counts)
	}
	return succeeded(calc, counts)
}

// ── Órdenes a proveedores ────────────────────────────────────────────────────

// ExportOrders agrupa los registros por proveedor y persiste las órdenes junto con,
// si hay renderer, un documento PDF por orden.
func (uc *PipelineUseCase) ExportOrders(ctx context.Context, rc *RunContext, calc procurement.CalculationResult) StageOutcome[procurement.OrderBuildResult] {
	built := procurement.NewOrderBuilder(uc.cfg.Orders).Build(calc.Records, rc.Date)

	var excludedUnits int64
	for _, rec := range calc.Records {
		if !rec.HasSupplier() {
			excludedUnits += rec.OrderQuantity
		}
	}
	counts := map[string]int64{
		"orders":           int64(len(built.Orders)),
		"total_units":      built.TotalUnits(),
		"missing_supplier": int64(built.MissingSupplier),
		"excluded_units":   excludedUnits,
	}
	if built.MissingSupplier > 0 {
		rc.Log.Warn().Int("count", built.MissingSupplier).Strs("skus", built.MissingSupplierSKUs).
			Msg("registros sin proveedor excluidos de las órdenes")
	}
	if total := calc.TotalOrderQuantity(); built.TotalUnits()+excludedUnits != total {
		return failed[procurement.OrderBuildResult](
			fmt.Errorf("conservación de unidades: órdenes %d + excluidas %d != calculadas %d", built.TotalUnits(), excludedUnits, total),
			counts)
	}

	// Los PDFs se generan antes de persistir: un fallo de render no deja órdenes guardadas.
	var documents map[string][]byte
	if uc.renderer != nil {
		documents = make(map[string][]byte, len(built.Orders))
		for _, order := range built.Orders {
			pdf, err := uc.renderer.Render(order)
			if err != nil {
				return failed[procurement.OrderBuildResult](fmt.Errorf("renderizar orden %s: %w", order.OrderID, err), counts)
			}
			documents[order.OrderID] = pdf
		}
	}

	if _, err := uc.artifacts.SaveSupplierOrders(ctx, rc.Date, built.Orders, documents); err != nil {
		return failed[procurement.OrderBuildResult](fmt.Errorf("guardar órdenes: %w", err), counts)
	}
	counts["documents"] = int64(len(documents))
	return succeeded(built, counts)
}

// ── Reporte de excepciones ───────────────────────────────────────────────────

// ReportExceptions evalúa las reglas de anomalía y persiste el reporte.
func (uc *PipelineUseCase) ReportExceptions(ctx context.Context, rc *RunContext, calc procurement.CalculationResult) StageOutcome[entity.ExceptionReport] {
	report := procurement.NewDetector(uc.cfg.Thresholds).Detect(calc.Records)

	counts := map[string]int64{"total_exceptions": int64(report.Summary.TotalExceptions)}
	for _, sev := range entity.Severities {
		counts[strings.ToLower(string(sev))] = int64(report.Summary.BySeverity[sev])
	}
	if _, err := uc.artifacts.SaveExceptionReport(ctx, rc.Date, report); err != nil {
		return failed[entity.ExceptionReport](fmt.Errorf("guardar reporte de excepciones: %w", err), counts)
	}
	return succeeded(report, counts)
}
