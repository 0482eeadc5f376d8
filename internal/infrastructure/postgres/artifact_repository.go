package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/procurement-pipeline/internal/application/dto"
	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/repository"
)

var _ repository.ArtifactRepository = (*ArtifactRepo)(nil)

// TxFunc abre una transacción y ejecuta fn dentro de ella (implementado por TxRunner).
type TxFunc func(ctx context.Context, fn func(q Querier) error) error

// ArtifactRepo persiste los artefactos de la corrida en PostgreSQL. Cada Save corre en
// su propia transacción: reemplaza lo guardado para la fecha o no cambia nada.
type ArtifactRepo struct {
	q    Querier
	inTx TxFunc
}

// NewArtifactRepository construye el adaptador. q se usa para lecturas; inTx para escrituras.
func NewArtifactRepository(q Querier, inTx TxFunc) *ArtifactRepo {
	return &ArtifactRepo{q: q, inTx: inTx}
}

func location(table string, date time.Time) string {
	return "postgres://" + table + "/" + date.Format(entity.DateLayout)
}

var replenishmentColumns = []string{
	"processing_date", "sku", "product_name", "category", "total_demand", "available_stock",
	"safety_stock_level", "net_demand", "case_size", "cases_needed", "order_quantity",
	"minimum_order_qty", "supplier_id", "supplier_name", "unit_price",
}

// SaveReplenishment reemplaza la tabla de reposición de la fecha (COPY dentro de la tx).
func (r *ArtifactRepo) SaveReplenishment(ctx context.Context, date time.Time, records []entity.ReplenishmentRecord) (string, error) {
	err := r.inTx(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM replenishment_records WHERE processing_date = $1`, date); err != nil {
			return fmt.Errorf("delete replenishment: %w", err)
		}
		_, err := q.CopyFrom(ctx, pgx.Identifier{"replenishment_records"}, replenishmentColumns,
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				rec := records[i]
				return []any{
					date, rec.SKU, rec.ProductName, rec.Category, rec.TotalDemand, rec.AvailableStock,
					rec.SafetyStockLevel, rec.NetDemand, rec.CaseSize, rec.CasesNeeded, rec.OrderQuantity,
					rec.MinimumOrderQty, rec.SupplierID, rec.SupplierName, rec.UnitPrice,
				}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy replenishment: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return location("replenishment_records", date), nil
}

// SaveSupplierOrders reemplaza las órdenes de la fecha; cada orden guarda su documento JSON
// y, si está en documents, su PDF. Todo en la misma transacción.
func (r *ArtifactRepo) SaveSupplierOrders(ctx context.Context, date time.Time, orders []entity.SupplierOrder, documents map[string][]byte) (string, error) {
	err := r.inTx(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM supplier_orders WHERE processing_date = $1`, date); err != nil {
			return fmt.Errorf("delete supplier orders: %w", err)
		}
		for _, o := range orders {
			doc, err := json.Marshal(dto.FromSupplierOrder(o))
			if err != nil {
				return fmt.Errorf("marshal order %s: %w", o.OrderID, err)
			}
			_, err = q.Exec(ctx, `
				INSERT INTO supplier_orders (order_id, processing_date, supplier_id, supplier_name, priority, total_units, total_value, document, pdf)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				o.OrderID, date, o.SupplierID, o.SupplierName, string(o.Priority),
				o.Summary.TotalUnits, o.Summary.TotalEstimatedValue, string(doc), documents[o.OrderID],
			)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("orden %s: %w", o.OrderID, domain.ErrDuplicate)
				}
				return fmt.Errorf("insert order %s: %w", o.OrderID, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return location("supplier_orders", date), nil
}

// SaveExceptionReport guarda (o reemplaza) el reporte de la fecha con su resumen en texto.
func (r *ArtifactRepo) SaveExceptionReport(ctx context.Context, date time.Time, report entity.ExceptionReport) (string, error) {
	doc := dto.FromExceptionReport(date, report)
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal exception report: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO exception_reports (processing_date, document, summary_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (processing_date) DO UPDATE SET document = EXCLUDED.document, summary_text = EXCLUDED.summary_text`,
		date, string(raw), dto.ExceptionSummaryText(doc),
	)
	if err != nil {
		return "", fmt.Errorf("upsert exception report: %w", err)
	}
	return location("exception_reports", date), nil
}

// SaveRunSummary guarda (o reemplaza) el resumen de la corrida.
func (r *ArtifactRepo) SaveRunSummary(ctx context.Context, run *entity.PipelineRun) (string, error) {
	raw, err := json.Marshal(dto.FromPipelineRun(run))
	if err != nil {
		return "", fmt.Errorf("marshal run summary: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO pipeline_runs (processing_date, run_id, status, started_at, finished_at, summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (processing_date) DO UPDATE SET
			run_id = EXCLUDED.run_id, status = EXCLUDED.status,
			started_at = EXCLUDED.started_at, finished_at = EXCLUDED.finished_at, summary = EXCLUDED.summary`,
		run.ProcessingDate, run.RunID, string(run.Status), run.StartedAt, run.FinishedAt, string(raw),
	)
	if err != nil {
		return "", fmt.Errorf("upsert run summary: %w", err)
	}
	return location("pipeline_runs", run.ProcessingDate), nil
}

// LoadRunSummary devuelve domain.ErrNotFound si no hay corrida para la fecha.
func (r *ArtifactRepo) LoadRunSummary(ctx context.Context, date time.Time) (*entity.PipelineRun, error) {
	var raw []byte
	err := r.q.QueryRow(ctx, `SELECT summary FROM pipeline_runs WHERE processing_date = $1`, date).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get run summary: %w", err)
	}
	var d dto.PipelineRunDTO
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("unmarshal run summary: %w", err)
	}
	return d.ToPipelineRun()
}
