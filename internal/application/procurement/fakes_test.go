package procurement_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
	"github.com/jhoicas/procurement-pipeline/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de puertos
// ──────────────────────────────────────────────────────────────────────────────

var testDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

type fakeRaw struct {
	orders      []repository.OrderLineBatch
	stock       []repository.StockBatch
	parseIssues []procurement.ValidationIssue
	err         error
	probeErr    error
	// gate bloquea LoadOrderLines hasta que se cierre (tests de concurrencia)
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeRaw) LoadOrderLines(ctx context.Context, _ time.Time) ([]repository.OrderLineBatch, []procurement.ValidationIssue, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	return f.orders, f.parseIssues, f.err
}

func (f *fakeRaw) LoadStockRecords(context.Context, time.Time) ([]repository.StockBatch, []procurement.ValidationIssue, error) {
	return f.stock, nil, f.err
}

func (f *fakeRaw) Probe(context.Context, time.Time) (repository.RawInputInventory, error) {
	if f.probeErr != nil {
		return repository.RawInputInventory{}, f.probeErr
	}
	inv := repository.RawInputInventory{}
	for _, b := range f.orders {
		inv.OrderSources = append(inv.OrderSources, b.Source)
	}
	for _, b := range f.stock {
		inv.StockSources = append(inv.StockSources, b.Source)
	}
	return inv, nil
}

type fakeMaster struct {
	rows    []entity.ProductMaster
	err     error
	pingErr error
}

func (f *fakeMaster) LoadMasterData(context.Context) ([]entity.ProductMaster, error) {
	return f.rows, f.err
}

func (f *fakeMaster) Ping(context.Context) error { return f.pingErr }

type fakeArtifacts struct {
	mu            sync.Mutex
	replenishment map[string][]entity.ReplenishmentRecord
	orders        map[string][]entity.SupplierOrder
	documents     map[string][]byte
	reports       map[string]entity.ExceptionReport
	runs          map[string]entity.PipelineRun
	failOrders    error
	failReport    error
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{
		replenishment: map[string][]entity.ReplenishmentRecord{},
		orders:        map[string][]entity.SupplierOrder{},
		documents:     map[string][]byte{},
		reports:       map[string]entity.ExceptionReport{},
		runs:          map[string]entity.PipelineRun{},
	}
}

func key(d time.Time) string { return d.Format(entity.DateLayout) }

func (f *fakeArtifacts) SaveReplenishment(_ context.Context, d time.Time, recs []entity.ReplenishmentRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replenishment[key(d)] = recs
	return "replenishment_" + key(d), nil
}

func (f *fakeArtifacts) SaveSupplierOrders(_ context.Context, d time.Time, orders []entity.SupplierOrder, documents map[string][]byte) (string, error) {
	if f.failOrders != nil {
		return "", f.failOrders
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[key(d)] = orders
	for id, pdf := range documents {
		f.documents[id] = pdf
	}
	return "orders_" + key(d), nil
}

func (f *fakeArtifacts) SaveExceptionReport(_ context.Context, d time.Time, r entity.ExceptionReport) (string, error) {
	if f.failReport != nil {
		return "", f.failReport
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[key(d)] = r
	return "exceptions_" + key(d), nil
}

func (f *fakeArtifacts) SaveRunSummary(_ context.Context, run *entity.PipelineRun) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[key(run.ProcessingDate)] = *run
	return "pipeline_run_" + key(run.ProcessingDate), nil
}

func (f *fakeArtifacts) LoadRunSummary(_ context.Context, d time.Time) (*entity.PipelineRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[key(d)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

type fakeRenderer struct{ err error }

func (f fakeRenderer) Render(o entity.SupplierOrder) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-" + o.OrderID), nil
}

var errBoom = errors.New("boom")

// ──────────────────────────────────────────────────────────────────────────────
// Datos de prueba
// ──────────────────────────────────────────────────────────────────────────────

func orderLine(sku string, qty int64) entity.OrderLine {
	return entity.OrderLine{
		OrderID:        "ORD-POS-1",
		SKU:            sku,
		Quantity:       qty,
		UnitPrice:      decimal.NewFromInt(3),
		OriginLocation: "POS-001",
		Date:           testDate,
	}
}

func masterRow(sku string, caseSize int64, supplier string) entity.ProductMaster {
	row := entity.ProductMaster{
		SKU:         sku,
		ProductName: "Producto " + sku,
		Category:    "Bebidas",
		CaseSize:    entity.Int64Ptr(caseSize),
	}
	if supplier != "" {
		row.SupplierID = entity.StringPtr("SUP-" + supplier)
		row.SupplierName = entity.StringPtr(supplier)
	}
	return row
}

// happyRaw: SKU-1 y SKU-2 con demanda, SKU-3 sin proveedor, una línea inválida.
func happyRaw() *fakeRaw {
	return &fakeRaw{
		orders: []repository.OrderLineBatch{{
			Source: "orders/pos001_2024-03-15.json",
			Lines: []entity.OrderLine{
				orderLine("SKU-1", 120),
				orderLine("SKU-2", 2500),
				orderLine("SKU-3", 7),
				orderLine("SKU-1", 0),
			},
		}},
		stock: []repository.StockBatch{{
			Source: "stock/wh01_2024-03-15.csv",
			Records: []entity.StockRecord{
				{Location: "WH-01", SKU: "SKU-1", Date: testDate, QuantityOnHand: 20},
				{Location: "WH-01", SKU: "SKU-2", Date: testDate, QuantityOnHand: 100},
			},
		}},
	}
}

func happyMaster() *fakeMaster {
	return &fakeMaster{rows: []entity.ProductMaster{
		masterRow("SKU-1", 10, "Acme"),
		masterRow("SKU-2", 24, "Beta"),
		masterRow("SKU-3", 5, ""),
	}}
}
