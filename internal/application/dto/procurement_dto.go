package dto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// PipelineVersion versión del formato de los documentos generados.
const PipelineVersion = "1.0"

// GeneratedBy identificador del generador en los metadatos de los documentos.
const GeneratedBy = "procurement_pipeline"

// ── Tabla de reposición ──────────────────────────────────────────────────────

// ReplenishmentCSVHeader columnas de la tabla de reposición, en orden.
var ReplenishmentCSVHeader = []string{
	"sku", "product_name", "category", "total_demand", "available_stock",
	"safety_stock_level", "net_demand", "case_size", "cases_needed", "order_quantity",
	"minimum_order_qty", "supplier_id", "supplier_name", "unit_price",
}

// ReplenishmentCSVRow fila CSV de un registro, alineada con ReplenishmentCSVHeader.
func ReplenishmentCSVRow(r entity.ReplenishmentRecord) []string {
	return []string{
		r.SKU,
		r.ProductName,
		r.Category,
		strconv.FormatInt(r.TotalDemand, 10),
		strconv.FormatInt(r.AvailableStock, 10),
		strconv.FormatInt(r.SafetyStockLevel, 10),
		strconv.FormatInt(r.NetDemand, 10),
		strconv.FormatInt(r.CaseSize, 10),
		strconv.FormatInt(r.CasesNeeded, 10),
		strconv.FormatInt(r.OrderQuantity, 10),
		strconv.FormatInt(r.MinimumOrderQty, 10),
		entity.StringValue(r.SupplierID),
		entity.StringValue(r.SupplierName),
		r.UnitPrice.StringFixed(4),
	}
}

// ReplenishmentFileName nombre del artefacto de reposición para la fecha.
func ReplenishmentFileName(date time.Time) string {
	return "replenishment_" + date.Format(entity.DateLayout) + ".csv"
}

// ── Órdenes a proveedores ────────────────────────────────────────────────────

// SupplierOrderDocument documento JSON de una orden de compra. No incluye marcas de
// tiempo de generación: la misma corrida produce documentos idénticos byte a byte.
type SupplierOrderDocument struct {
	OrderID               string                  `json:"order_id"`
	SupplierID            string                  `json:"supplier_id"`
	SupplierName          string                  `json:"supplier_name"`
	OrderDate             string                  `json:"order_date"`
	RequestedDeliveryDate string                  `json:"requested_delivery_date"`
	Status                string                  `json:"status"`
	Priority              string                  `json:"priority"`
	Items                 []SupplierOrderItemDTO  `json:"items"`
	Summary               SupplierOrderSummaryDTO `json:"summary"`
	Metadata              DocumentMetadata        `json:"metadata"`
}

// SupplierOrderItemDTO línea de la orden.
type SupplierOrderItemDTO struct {
	LineNumber      int             `json:"line_number"`
	SKU             string          `json:"sku"`
	ProductName     string          `json:"product_name"`
	Category        string          `json:"category"`
	QuantityOrdered int64           `json:"quantity_ordered"`
	Cases           int64           `json:"cases"`
	CaseSize        int64           `json:"case_size"`
	NetDemand       int64           `json:"net_demand"`
	AvailableStock  int64           `json:"available_stock"`
	TotalDemand     int64           `json:"total_demand"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	EstimatedValue  decimal.Decimal `json:"estimated_value"`
}

// SupplierOrderSummaryDTO totales de la orden.
type SupplierOrderSummaryDTO struct {
	TotalLineItems      int             `json:"total_line_items"`
	TotalUnits          int64           `json:"total_units"`
	TotalCases          int64           `json:"total_cases"`
	TotalEstimatedValue decimal.Decimal `json:"total_estimated_value"`
}

// DocumentMetadata metadatos comunes de los documentos generados.
type DocumentMetadata struct {
	GeneratedBy     string `json:"generated_by"`
	PipelineVersion string `json:"pipeline_version"`
	SourceFile      string `json:"source_file"`
}

// FromSupplierOrder mapea la orden de dominio a su documento.
func FromSupplierOrder(o entity.SupplierOrder) SupplierOrderDocument {
	items := make([]SupplierOrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, SupplierOrderItemDTO{
			LineNumber:      it.LineNumber,
			SKU:             it.SKU,
			ProductName:     it.ProductName,
			Category:        it.Category,
			QuantityOrdered: it.QuantityOrdered,
			Cases:           it.Cases,
			CaseSize:        it.CaseSize,
			NetDemand:       it.NetDemand,
			AvailableStock:  it.AvailableStock,
			TotalDemand:     it.TotalDemand,
			UnitPrice:       it.UnitPrice.Round(4),
			EstimatedValue:  it.EstimatedValue.Round(2),
		})
	}
	return SupplierOrderDocument{
		OrderID:               o.OrderID,
		SupplierID:            o.SupplierID,
		SupplierName:          o.SupplierName,
		OrderDate:             o.OrderDate.Format(entity.DateLayout),
		RequestedDeliveryDate: o.RequestedDeliveryDate.Format(entity.DateLayout),
		Status:                string(o.Status),
		Priority:              string(o.Priority),
		Items:                 items,
		Summary: SupplierOrderSummaryDTO{
			TotalLineItems:      o.Summary.TotalLineItems,
			TotalUnits:          o.Summary.TotalUnits,
			TotalCases:          o.Summary.TotalCases,
			TotalEstimatedValue: o.Summary.TotalEstimatedValue.Round(2),
		},
		Metadata: DocumentMetadata{
			GeneratedBy:     GeneratedBy,
			PipelineVersion: PipelineVersion,
			SourceFile:      ReplenishmentFileName(o.OrderDate),
		},
	}
}

// ── Reporte de excepciones ───────────────────────────────────────────────────

// ExceptionReportDocument documento JSON del reporte de excepciones.
type ExceptionReportDocument struct {
	ReportDate      string                `json:"report_date"`
	PipelineVersion string                `json:"pipeline_version"`
	Summary         ExceptionSummaryDTO   `json:"summary"`
	Exceptions      []ExceptionFindingDTO `json:"exceptions"`
}

// ExceptionSummaryDTO estadísticas del reporte.
type ExceptionSummaryDTO struct {
	TotalSKUsAnalyzed  int            `json:"total_skus_analyzed"`
	TotalExceptions    int            `json:"total_exceptions"`
	BySeverity         map[string]int `json:"by_severity"`
	ByType             map[string]int `json:"by_type"`
	TotalDemand        int64          `json:"total_demand"`
	TotalOrderQuantity int64          `json:"total_order_quantity"`
	UniqueSuppliers    int            `json:"unique_suppliers"`
}

// ExceptionFindingDTO hallazgo individual.
type ExceptionFindingDTO struct {
	Type           string   `json:"type"`
	Severity       string   `json:"severity"`
	SKU            string   `json:"sku"`
	ProductName    string   `json:"product_name"`
	Category       string   `json:"category"`
	Supplier       string   `json:"supplier,omitempty"`
	MetricValue    *float64 `json:"metric_value"`
	Threshold      *float64 `json:"threshold"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
}

// FromExceptionReport mapea el reporte de dominio a su documento.
func FromExceptionReport(date time.Time, r entity.ExceptionReport) ExceptionReportDocument {
	s := r.Summary
	summary := ExceptionSummaryDTO{
		TotalSKUsAnalyzed:  s.TotalSKUsAnalyzed,
		TotalExceptions:    s.TotalExceptions,
		BySeverity:         make(map[string]int, len(entity.Severities)),
		ByType:             make(map[string]int, len(entity.ExceptionTypes)),
		TotalDemand:        s.TotalDemand,
		TotalOrderQuantity: s.TotalOrderQuantity,
		UniqueSuppliers:    s.UniqueSuppliers,
	}
	for _, sev := range entity.Severities {
		summary.BySeverity[string(sev)] = s.BySeverity[sev]
	}
	for _, t := range entity.ExceptionTypes {
		summary.ByType[string(t)] = s.ByType[t]
	}

	findings := make([]ExceptionFindingDTO, 0, len(r.Findings))
	for _, f := range r.Findings {
		findings = append(findings, ExceptionFindingDTO{
			Type:           string(f.Type),
			Severity:       string(f.Severity),
			SKU:            f.SKU,
			ProductName:    f.ProductName,
			Category:       f.Category,
			Supplier:       f.SupplierName,
			MetricValue:    roundPtr(f.MetricValue),
			Threshold:      roundPtr(f.Threshold),
			Description:    f.Description,
			Recommendation: f.Recommendation,
		})
	}
	return ExceptionReportDocument{
		ReportDate:      date.Format(entity.DateLayout),
		PipelineVersion: PipelineVersion,
		Summary:         summary,
		Exceptions:      findings,
	}
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r, _ := decimal.NewFromFloat(*v).Round(4).Float64()
	return &r
}

// ── Corridas ─────────────────────────────────────────────────────────────────

// RunPipelineRequest body para POST /api/pipeline/runs.
type RunPipelineRequest struct {
	Date           string `json:"date"` // YYYY-MM-DD
	SkipValidation bool   `json:"skip_validation"`
}

// ReplayRequest body para POST /api/pipeline/replay.
type ReplayRequest struct {
	EndDate string `json:"end_date"` // YYYY-MM-DD; vacío = hoy
	Days    int    `json:"days"`
}

// PipelineRunDTO resumen de una corrida (persistido y expuesto por la API).
type PipelineRunDTO struct {
	RunID          string           `json:"run_id"`
	ProcessingDate string           `json:"processing_date"`
	Status         string           `json:"status"`
	Stages         []StageResultDTO `json:"stages"`
	StartedAt      time.Time        `json:"started_at"`
	FinishedAt     time.Time        `json:"finished_at"`
	Error          string           `json:"error,omitempty"`
	Issues         []RunIssueDTO    `json:"data_quality_issues"`
}

// RunIssueDTO problema de calidad de datos; index -1 indica el archivo completo.
type RunIssueDTO struct {
	Level   string `json:"level"`
	Source  string `json:"source"`
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// StageResultDTO resultado de una etapa.
type StageResultDTO struct {
	Name       string           `json:"name"`
	Status     string           `json:"status"`
	Counts     map[string]int64 `json:"counts,omitempty"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// FromPipelineRun mapea la corrida de dominio a DTO.
func FromPipelineRun(r *entity.PipelineRun) PipelineRunDTO {
	stages := make([]StageResultDTO, 0, len(r.Stages))
	for _, s := range r.Stages {
		stages = append(stages, StageResultDTO{
			Name:       string(s.Name),
			Status:     string(s.Status),
			Counts:     s.Counts,
			Error:      s.Error,
			StartedAt:  s.StartedAt,
			FinishedAt: s.FinishedAt,
		})
	}
	issues := make([]RunIssueDTO, 0, len(r.Issues))
	for _, is := range r.Issues {
		issues = append(issues, RunIssueDTO(is))
	}
	return PipelineRunDTO{
		RunID:          r.RunID,
		ProcessingDate: r.ProcessingDate.Format(entity.DateLayout),
		Status:         string(r.Status),
		Stages:         stages,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		Error:          r.Error,
		Issues:         issues,
	}
}

// ToPipelineRun reconstruye la corrida desde su DTO persistido.
func (d PipelineRunDTO) ToPipelineRun() (*entity.PipelineRun, error) {
	date, err := time.Parse(entity.DateLayout, d.ProcessingDate)
	if err != nil {
		return nil, fmt.Errorf("processing_date inválida %q: %w", d.ProcessingDate, err)
	}
	run := &entity.PipelineRun{
		RunID:          d.RunID,
		ProcessingDate: date,
		Status:         entity.RunStatus(d.Status),
		Stages:         make([]entity.StageResult, 0, len(d.Stages)),
		StartedAt:      d.StartedAt,
		FinishedAt:     d.FinishedAt,
		Error:          d.Error,
	}
	for _, s := range d.Stages {
		run.Stages = append(run.Stages, entity.StageResult{
			Name:       entity.StageName(s.Name),
			Status:     entity.StageStatus(s.Status),
			Counts:     s.Counts,
			Error:      s.Error,
			StartedAt:  s.StartedAt,
			FinishedAt: s.FinishedAt,
		})
	}
	for _, is := range d.Issues {
		run.Issues = append(run.Issues, entity.RunIssue(is))
	}
	return run, nil
}

// PreflightResponse resultado de POST /api/pipeline/preflight.
type PreflightResponse struct {
	Date         string   `json:"date"`
	Ready        bool     `json:"ready"`
	OrderSources []string `json:"order_sources"`
	StockSources []string `json:"stock_sources"`
	MasterDataOK bool     `json:"master_data_ok"`
	Problems     []string `json:"problems,omitempty"`
}

// ReplayItemDTO resultado de una fecha del replay.
type ReplayItemDTO struct {
	Date  string          `json:"date"`
	Error string          `json:"error,omitempty"`
	Run   *PipelineRunDTO `json:"run,omitempty"`
}

// ReplayResponse resultado de POST /api/pipeline/replay.
type ReplayResponse struct {
	Days       int             `json:"days"`
	Successful int             `json:"successful"`
	Results    []ReplayItemDTO `json:"results"`
}
