package filestore_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
	"github.com/jhoicas/procurement-pipeline/internal/infrastructure/filestore"
)

func order(id, supplier string) entity.SupplierOrder {
	return entity.SupplierOrder{
		OrderID: id, SupplierID: "SUP-" + supplier, SupplierName: supplier,
		OrderDate: date, RequestedDeliveryDate: date.AddDate(0, 0, 2),
		Status: entity.OrderStatusPending, Priority: entity.PriorityNormal,
		Items: []entity.SupplierOrderLine{{
			LineNumber: 1, SKU: "SKU-1", QuantityOrdered: 10, Cases: 1, CaseSize: 10,
			UnitPrice: decimal.NewFromInt(2), EstimatedValue: decimal.NewFromInt(20),
		}},
		Summary: entity.OrderSummary{TotalLineItems: 1, TotalUnits: 10, TotalCases: 1, TotalEstimatedValue: decimal.NewFromInt(20)},
	}
}

func TestSaveReplenishment_CSVConEncabezado(t *testing.T) {
	store := filestore.NewArtifactStore(t.TempDir())

	path, err := store.SaveReplenishment(context.Background(), date, []entity.ReplenishmentRecord{
		{SKU: "SKU-1", TotalDemand: 12, NetDemand: 12, CaseSize: 10, CasesNeeded: 2, OrderQuantity: 20, UnitPrice: decimal.NewFromInt(2)},
	})

	require.NoError(t, err)
	assert.Equal(t, "replenishment_2024-03-15.csv", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, rows, 2)
	assert.True(t, strings.HasPrefix(rows[0], "sku,"))
	assert.True(t, strings.HasPrefix(rows[1], "SKU-1,"))
}

func TestSaveSupplierOrders_ReemplazaDirectorio(t *testing.T) {
	out := t.TempDir()
	store := filestore.NewArtifactStore(out)
	ctx := context.Background()

	_, err := store.SaveSupplierOrders(ctx, date, []entity.SupplierOrder{order("ORD-1", "Acme Foods"), order("ORD-2", "Beta/Co")}, nil)
	require.NoError(t, err)
	dir, err := store.SaveSupplierOrders(ctx, date, []entity.SupplierOrder{order("ORD-1", "Acme Foods")}, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "la segunda corrida no deja órdenes de la primera")
	assert.Equal(t, "Acme_Foods_2024-03-15.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "ORD-1", doc["order_id"])
}

func TestSaveSupplierOrders_NombresSegurosRepetidos(t *testing.T) {
	store := filestore.NewArtifactStore(t.TempDir())

	dir, err := store.SaveSupplierOrders(context.Background(), date,
		[]entity.SupplierOrder{order("ORD-1", "Acme Foods"), order("ORD-2", "Acmé Foods")}, nil)

	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSaveSupplierOrders_PDFJuntoAlJSON(t *testing.T) {
	store := filestore.NewArtifactStore(t.TempDir())
	ctx := context.Background()
	orders := []entity.SupplierOrder{order("ORD-1", "Acme"), order("ORD-2", "Beta")}

	dir, err := store.SaveSupplierOrders(ctx, date, orders, map[string][]byte{
		"ORD-1": []byte("%PDF-1.4 uno"),
		"ORD-2": []byte("%PDF-1.4 dos"),
	})

	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "ORD-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 uno", string(data))
	assert.FileExists(t, filepath.Join(dir, "ORD-2.pdf"))
	assert.FileExists(t, filepath.Join(dir, "Acme_2024-03-15.json"))
}

func TestSaveSupplierOrders_SinDocumentosNoQuedanPDFsPrevios(t *testing.T) {
	store := filestore.NewArtifactStore(t.TempDir())
	ctx := context.Background()
	o := order("ORD-1", "Acme")
	_, err := store.SaveSupplierOrders(ctx, date, []entity.SupplierOrder{o}, map[string][]byte{"ORD-1": []byte("%PDF")})
	require.NoError(t, err)

	dir, err := store.SaveSupplierOrders(ctx, date, []entity.SupplierOrder{o}, nil)

	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "ORD-1.pdf"))
}

func TestSaveExceptionReport_JSONYTexto(t *testing.T) {
	out := t.TempDir()
	store := filestore.NewArtifactStore(out)
	report := procurement.NewDetector(procurement.DefaultThresholds(), procurement.DefaultRules()...).Detect(
		[]entity.ReplenishmentRecord{{SKU: "SKU-1", TotalDemand: 5000, AvailableStock: 0, NetDemand: 5000, CaseSize: 10, CasesNeeded: 500, OrderQuantity: 5000}})

	path, err := store.SaveExceptionReport(context.Background(), date, report)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "exceptions", "exception_report_2024-03-15.json"), path)
	_, err = os.Stat(filepath.Join(out, "exceptions", "exception_summary_2024-03-15.txt"))
	assert.NoError(t, err)
}

func TestSaveExceptionReport_FalloAlPublicarNoDejaTexto(t *testing.T) {
	out := t.TempDir()
	store := filestore.NewArtifactStore(out)
	// un directorio no vacío en la ruta del JSON impide el rename
	blocker := filepath.Join(out, "exceptions", "exception_report_2024-03-15.json")
	writeFile(t, filepath.Join(blocker, "x"), "ocupado")

	_, err := store.SaveExceptionReport(context.Background(), date, entity.ExceptionReport{})

	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(out, "exceptions", "exception_summary_2024-03-15.txt"))
	entries, err := os.ReadDir(filepath.Join(out, "exceptions"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no quedan temporales")
}

func TestRunSummary_GuardarYLeer(t *testing.T) {
	store := filestore.NewArtifactStore(t.TempDir())
	ctx := context.Background()
	start := date.Add(6 * time.Hour)
	run := &entity.PipelineRun{
		RunID:          entity.RunIDFor(date),
		ProcessingDate: date,
		Status:         entity.RunSuccess,
		StartedAt:      start,
		FinishedAt:     start.Add(2 * time.Second),
		Stages: []entity.StageResult{{
			Name: entity.StageValidation, Status: entity.StageSuccess,
			Counts: map[string]int64{"errors": 1}, StartedAt: start, FinishedAt: start.Add(time.Second),
		}},
		Issues: []entity.RunIssue{{
			Level: "ERROR", Source: "orders/pos_1_2024-03-15.json", Index: 2, Field: "items[0].quantity", Message: "debe ser entero",
		}},
	}

	_, err := store.SaveRunSummary(ctx, run)
	require.NoError(t, err)
	loaded, err := store.LoadRunSummary(ctx, date)

	require.NoError(t, err)
	assert.Equal(t, run.RunID, loaded.RunID)
	assert.Equal(t, entity.RunSuccess, loaded.Status)
	require.Len(t, loaded.Stages, 1)
	assert.Equal(t, entity.StageValidation, loaded.Stages[0].Name)
	assert.Equal(t, run.Issues, loaded.Issues, "los problemas de calidad se leen completos")
}

func TestLoadRunSummary_NoExiste(t *testing.T) {
	_, err := filestore.NewArtifactStore(t.TempDir()).LoadRunSummary(context.Background(), date)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
