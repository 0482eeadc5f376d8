package filestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/repository"
)

var _ repository.MasterDataRepository = (*MasterCSVRepo)(nil)

// MasterColumns encabezado esperado del CSV de datos maestros.
var MasterColumns = []string{
	"sku", "product_name", "category", "case_size", "minimum_order_qty",
	"safety_stock_level", "supplier_id", "supplier_name",
}

// MasterCSVRepo datos maestros desde un CSV exportado de la base de productos.
// Sirve para corridas locales sin PostgreSQL.
type MasterCSVRepo struct {
	path string
}

// NewMasterCSVRepository construye el repositorio sobre la ruta del CSV.
func NewMasterCSVRepository(path string) *MasterCSVRepo {
	return &MasterCSVRepo{path: path}
}

// Ping verifica que el archivo exista y tenga el encabezado esperado.
func (r *MasterCSVRepo) Ping(_ context.Context) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("%w: datos maestros: %v", domain.ErrInfrastructure, err)
	}
	defer f.Close()
	header, err := csv.NewReader(f).Read()
	if err != nil {
		return fmt.Errorf("%w: datos maestros: %v", domain.ErrInfrastructure, err)
	}
	if _, missing := columnIndex(header, MasterColumns); len(missing) > 0 {
		return fmt.Errorf("%w: datos maestros: faltan columnas %s", domain.ErrInfrastructure, strings.Join(missing, ", "))
	}
	return nil
}

// LoadMasterData lee todas las filas. Las celdas vacías se cargan como campos ausentes;
// un valor numérico inválido aborta la carga.
func (r *MasterCSVRepo) LoadMasterData(ctx context.Context) ([]entity.ProductMaster, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: datos maestros: %v", domain.ErrInfrastructure, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado de %s: %w", r.path, err)
	}
	idx, missing := columnIndex(header, MasterColumns)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: faltan columnas %s", domain.ErrInvalidInput, r.path, strings.Join(missing, ", "))
	}

	rows := make([]entity.ProductMaster, 0)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s fila %d: %w", r.path, line, err)
		}
		cell := func(col string) string { return strings.TrimSpace(rec[idx[col]]) }

		row := entity.ProductMaster{
			SKU:          cell("sku"),
			ProductName:  cell("product_name"),
			Category:     cell("category"),
			SupplierID:   optionalString(cell("supplier_id")),
			SupplierName: optionalString(cell("supplier_name")),
		}
		for col, dst := range map[string]**int64{
			"case_size":          &row.CaseSize,
			"minimum_order_qty":  &row.MinimumOrderQty,
			"safety_stock_level": &row.SafetyStockLevel,
		} {
			v, err := optionalInt(cell(col))
			if err != nil {
				return nil, fmt.Errorf("%w: %s fila %d columna %s: %v", domain.ErrInvalidInput, r.path, line, col, err)
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	// Exportaciones de hojas de cálculo suelen escribir "24.0".
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		v := int64(f)
		return &v, nil
	}
	return nil, fmt.Errorf("valor no entero %q", s)
}
