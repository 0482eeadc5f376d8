package filestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/infrastructure/filestore"
)

const masterCSV = `sku,product_name,category,case_size,minimum_order_qty,safety_stock_level,supplier_id,supplier_name
SKU-1,Leche,Lácteos,10,,5,SUP-A,Acme
SKU-2,Pan,Panadería,24.0,48,,,
`

func TestLoadMasterData_CamposOpcionales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	writeFile(t, path, masterCSV)
	repo := filestore.NewMasterCSVRepository(path)

	require.NoError(t, repo.Ping(context.Background()))
	rows, err := repo.LoadMasterData(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(10), *rows[0].CaseSize)
	assert.Nil(t, rows[0].MinimumOrderQty)
	assert.Equal(t, "Acme", *rows[0].SupplierName)
	assert.Equal(t, int64(24), *rows[1].CaseSize)
	assert.Nil(t, rows[1].SafetyStockLevel)
	assert.Nil(t, rows[1].SupplierName)
}

func TestLoadMasterData_ValorInvalido(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	writeFile(t, path, "sku,product_name,category,case_size,minimum_order_qty,safety_stock_level,supplier_id,supplier_name\nSKU-1,X,Y,diez,,,,\n")

	_, err := filestore.NewMasterCSVRepository(path).LoadMasterData(context.Background())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPing_ArchivoInexistente(t *testing.T) {
	err := filestore.NewMasterCSVRepository(filepath.Join(t.TempDir(), "x.csv")).Ping(context.Background())

	assert.ErrorIs(t, err, domain.ErrInfrastructure)
}
