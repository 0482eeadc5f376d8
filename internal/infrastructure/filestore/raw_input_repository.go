package filestore

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
	"github.com/jhoicas/procurement-pipeline/internal/domain/repository"
)

var _ repository.RawInputRepository = (*RawInputRepo)(nil)

const (
	ordersDir = "orders"
	stockDir  = "stock"
)

// StockColumns columnas requeridas de los archivos de stock.
var StockColumns = []string{"warehouse_id", "date", "sku", "quantity_on_hand"}

// RawInputRepo lee los archivos crudos del día desde un directorio local:
//
//	<base>/orders/*_<YYYY-MM-DD>.json  órdenes de cada POS
//	<base>/stock/*_<YYYY-MM-DD>.csv    stock de cada bodega
type RawInputRepo struct {
	baseDir string
}

// NewRawInputRepository construye el lector sobre baseDir.
func NewRawInputRepository(baseDir string) *RawInputRepo {
	return &RawInputRepo{baseDir: baseDir}
}

// Probe lista los archivos de la fecha. Falla si alguno de los directorios no existe.
func (r *RawInputRepo) Probe(_ context.Context, date time.Time) (repository.RawInputInventory, error) {
	var inv repository.RawInputInventory
	for _, dir := range []string{ordersDir, stockDir} {
		if _, err := os.Stat(filepath.Join(r.baseDir, dir)); err != nil {
			return inv, fmt.Errorf("directorio %s: %w", dir, err)
		}
	}
	orders, err := r.files(ordersDir, date, ".json")
	if err != nil {
		return inv, err
	}
	stock, err := r.files(stockDir, date, ".csv")
	if err != nil {
		return inv, err
	}
	inv.OrderSources = orders
	inv.StockSources = stock
	return inv, nil
}

// files devuelve rutas relativas a baseDir, ordenadas.
func (r *RawInputRepo) files(dir string, date time.Time, ext string) ([]string, error) {
	pattern := filepath.Join(r.baseDir, dir, "*_"+date.Format(entity.DateLayout)+ext)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(r.baseDir, m)
		if err != nil {
			rel = m
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

// ── Órdenes (JSON) ───────────────────────────────────────────────────────────

type rawOrder struct {
	OrderID   string     `json:"order_id"`
	PosID     string     `json:"pos_id"`
	Timestamp string     `json:"timestamp"`
	Items     *[]rawItem `json:"items"`
}

type rawItem struct {
	SKU      string      `json:"sku"`
	Quantity json.Number `json:"quantity"`
	Price    json.Number `json:"price"`
}

// LoadOrderLines lee y aplana las órdenes del día. Un archivo ilegible se reporta como
// issue y se omite; las líneas con valores no numéricos se omiten con su issue.
func (r *RawInputRepo) LoadOrderLines(ctx context.Context, date time.Time) ([]repository.OrderLineBatch, []procurement.ValidationIssue, error) {
	sources, err := r.files(ordersDir, date, ".json")
	if err != nil {
		return nil, nil, err
	}

	var (
		batches []repository.OrderLineBatch
		issues  []procurement.ValidationIssue
	)
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		raw, err := os.ReadFile(filepath.Join(r.baseDir, src))
		if err != nil {
			return nil, nil, fmt.Errorf("leer %s: %w", src, err)
		}
		var orders []rawOrder
		if err := json.Unmarshal(raw, &orders); err != nil {
			issues = append(issues, procurement.FileIssue(procurement.IssueError, src, "JSON inválido: "+err.Error()))
			continue
		}
		lines, orderIssues := flattenOrders(src, date, orders)
		issues = append(issues, orderIssues...)
		batches = append(batches, repository.OrderLineBatch{Source: src, Lines: lines})
	}
	return batches, issues, nil
}

func flattenOrders(src string, date time.Time, orders []rawOrder) ([]entity.OrderLine, []procurement.ValidationIssue) {
	var (
		lines  []entity.OrderLine
		issues []procurement.ValidationIssue
	)
	for oi, o := range orders {
		missing := missingOrderFields(o)
		if len(missing) > 0 {
			issues = append(issues, procurement.RecordIssue(procurement.IssueError, src, oi, strings.Join(missing, ","),
				"campos requeridos ausentes"))
			continue
		}
		if len(*o.Items) == 0 {
			issues = append(issues, procurement.RecordIssue(procurement.IssueWarning, src, oi, "items", "orden sin ítems"))
			continue
		}
		for ii, it := range *o.Items {
			field := fmt.Sprintf("items[%d]", ii)
			qty, err := it.Quantity.Int64()
			if err != nil {
				issues = append(issues, procurement.RecordIssue(procurement.IssueError, src, oi, field+".quantity",
					fmt.Sprintf("cantidad inválida %q", it.Quantity.String())))
				continue
			}
			price, err := decimal.NewFromString(it.Price.String())
			if err != nil {
				issues = append(issues, procurement.RecordIssue(procurement.IssueError, src, oi, field+".price",
					fmt.Sprintf("precio inválido %q", it.Price.String())))
				continue
			}
			lines = append(lines, entity.OrderLine{
				OrderID:        o.OrderID,
				SKU:            strings.TrimSpace(it.SKU),
				Quantity:       qty,
				UnitPrice:      price,
				OriginLocation: o.PosID,
				Date:           date,
			})
		}
	}
	return lines, issues
}

func missingOrderFields(o rawOrder) []string {
	var missing []string
	if o.OrderID == "" {
		missing = append(missing, "order_id")
	}
	if o.PosID == "" {
		missing = append(missing, "pos_id")
	}
	if o.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if o.Items == nil {
		missing = append(missing, "items")
	}
	return missing
}

// ── Stock (CSV) ──────────────────────────────────────────────────────────────

// LoadStockRecords lee los CSV de stock del día. Un archivo sin las columnas requeridas
// se reporta y se omite completo.
func (r *RawInputRepo) LoadStockRecords(ctx context.Context, date time.Time) ([]repository.StockBatch, []procurement.ValidationIssue, error) {
	sources, err := r.files(stockDir, date, ".csv")
	if err != nil {
		return nil, nil, err
	}

	var (
		batches []repository.StockBatch
		issues  []procurement.ValidationIssue
	)
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		records, fileIssues, err := r.readStockFile(src, date)
		if err != nil {
			return nil, nil, err
		}
		issues = append(issues, fileIssues...)
		if records != nil {
			batches = append(batches, repository.StockBatch{Source: src, Records: records})
		}
	}
	return batches, issues, nil
}

func (r *RawInputRepo) readStockFile(src string, date time.Time) ([]entity.StockRecord, []procurement.ValidationIssue, error) {
	f, err := os.Open(filepath.Join(r.baseDir, src))
	if err != nil {
		return nil, nil, fmt.Errorf("abrir %s: %w", src, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, []procurement.ValidationIssue{procurement.FileIssue(procurement.IssueError, src, "archivo vacío")}, nil
		}
		return nil, []procurement.ValidationIssue{procurement.FileIssue(procurement.IssueError, src, "CSV inválido: "+err.Error())}, nil
	}
	idx, missing := columnIndex(header, StockColumns)
	if len(missing) > 0 {
		return nil, []procurement.ValidationIssue{procurement.FileIssue(procurement.IssueError, src,
			"faltan columnas: "+strings.Join(missing, ", "))}, nil
	}

	records := make([]entity.StockRecord, 0)
	var issues []procurement.ValidationIssue
	for row := 0; ; row++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			issues = append(issues, procurement.RecordIssue(procurement.IssueError, src, row, "", "fila inválida: "+err.Error()))
			continue
		}
		if len(rec) < len(header) {
			issues = append(issues, procurement.RecordIssue(procurement.IssueError, src, row, "",
				fmt.Sprintf("se esperaban %d columnas, hay %d", len(header), len(rec))))
			continue
		}
		qtyText := strings.TrimSpace(rec[idx["quantity_on_hand"]])
		qty, err := strconv.ParseInt(qtyText, 10, 64)
		if err != nil {
			issues = append(issues, procurement.RecordIssue(procurement.IssueError, src, row, "quantity_on_hand",
				fmt.Sprintf("cantidad no entera %q", qtyText)))
			continue
		}
		recDate := date
		if d, err := time.Parse(entity.DateLayout, strings.TrimSpace(rec[idx["date"]])); err == nil {
			recDate = d
		}
		records = append(records, entity.StockRecord{
			Location:       strings.TrimSpace(rec[idx["warehouse_id"]]),
			SKU:            strings.TrimSpace(rec[idx["sku"]]),
			Date:           recDate,
			QuantityOnHand: qty,
		})
	}
	return records, issues, nil
}

// columnIndex ubica cada columna requerida en el encabezado (sin importar el orden).
func columnIndex(header, required []string) (map[string]int, []string) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return idx, missing
}
