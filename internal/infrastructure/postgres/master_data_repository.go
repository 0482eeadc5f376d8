package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/repository"
)

var _ repository.MasterDataRepository = (*MasterDataRepo)(nil)

// MasterDataRepo lee productos, reglas de reposición y proveedores desde PostgreSQL.
type MasterDataRepo struct {
	q Querier
}

// NewMasterDataRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMasterDataRepository(q Querier) *MasterDataRepo {
	return &MasterDataRepo{q: q}
}

const masterDataQuery = `
	SELECT
		p.product_id AS sku,
		COALESCE(p.product_name, '') AS product_name,
		COALESCE(p.category, '') AS category,
		p.case_size,
		r.moq AS minimum_order_qty,
		r.safety_stock_level,
		r.supplier_id,
		s.supplier_name
	FROM products p
	LEFT JOIN replenishment_rules r ON p.product_id = r.product_id
	LEFT JOIN suppliers s ON r.supplier_id = s.supplier_id
	ORDER BY p.product_id`

// LoadMasterData devuelve una fila por producto; los campos de regla y proveedor son nil
// cuando el producto no tiene regla o proveedor.
func (r *MasterDataRepo) LoadMasterData(ctx context.Context) ([]entity.ProductMaster, error) {
	rows, err := r.q.Query(ctx, masterDataQuery)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("%w: tablas de datos maestros ausentes: %v", domain.ErrInfrastructure, err)
		}
		return nil, fmt.Errorf("query master data: %w", err)
	}
	defer rows.Close()

	var out []entity.ProductMaster
	for rows.Next() {
		var m entity.ProductMaster
		if err := rows.Scan(
			&m.SKU, &m.ProductName, &m.Category, &m.CaseSize,
			&m.MinimumOrderQty, &m.SafetyStockLevel, &m.SupplierID, &m.SupplierName,
		); err != nil {
			return nil, fmt.Errorf("scan master data: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate master data: %w", err)
	}
	return out, nil
}

// Ping verifica que la fuente responda y que la tabla de productos exista.
func (r *MasterDataRepo) Ping(ctx context.Context) error {
	var one int
	if err := r.q.QueryRow(ctx, `SELECT 1 FROM products LIMIT 1`).Scan(&one); err != nil {
		if isUndefinedTable(err) {
			return fmt.Errorf("tabla products inexistente: %w", err)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("ping master data: %w", err)
	}
	return nil
}
