package procurement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
)

func TestMasterSnapshot_DuplicadoConservaPrimeraFila(t *testing.T) {
	first := master("SKU-1", 10, 0, 0, "S1", "Acme")
	second := master("SKU-1", 99, 0, 0, "S2", "Otro")

	snap := procurement.NewMasterSnapshot([]entity.ProductMaster{first, second, master("SKU-2", 6, 0, 0, "S1", "Acme")})

	row, ok := snap.Lookup("SKU-1")
	require.True(t, ok)
	assert.Equal(t, int64(10), *row.CaseSize)
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, []string{"SKU-1"}, snap.Duplicates())
}

func TestMasterSnapshot_EsInmutable(t *testing.T) {
	rows := []entity.ProductMaster{master("SKU-1", 10, 0, 0, "S1", "Acme")}
	snap := procurement.NewMasterSnapshot(rows)

	*rows[0].CaseSize = 1
	got, _ := snap.Lookup("SKU-1")
	*got.SupplierName = "Cambiado"

	again, _ := snap.Lookup("SKU-1")
	assert.Equal(t, int64(10), *again.CaseSize, "modificar la fuente no debe afectar el snapshot")
	assert.Equal(t, "Acme", *again.SupplierName, "modificar una copia no debe afectar el snapshot")
}

func TestMasterSnapshot_NilNoEntraEnPanico(t *testing.T) {
	var snap *procurement.MasterSnapshot

	_, ok := snap.Lookup("SKU-1")
	assert.False(t, ok)
	assert.Zero(t, snap.Len())
	assert.Nil(t, snap.Duplicates())
}
