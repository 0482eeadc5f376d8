package procurement

import (
	"sort"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// MasterSnapshot vista inmutable de los datos maestros de producto para una corrida.
// Se construye una vez y se pasa al calculador; no mantiene conexión con la fuente.
type MasterSnapshot struct {
	bySKU      map[string]entity.ProductMaster
	duplicates []string
}

// NewMasterSnapshot indexa las filas por SKU. Si un SKU se repite se conserva la
// primera fila y el SKU queda registrado en Duplicates.
func NewMasterSnapshot(rows []entity.ProductMaster) *MasterSnapshot {
	s := &MasterSnapshot{bySKU: make(map[string]entity.ProductMaster, len(rows))}
	seenDup := make(map[string]bool)
	for _, row := range rows {
		if _, ok := s.bySKU[row.SKU]; ok {
			if !seenDup[row.SKU] {
				s.duplicates = append(s.duplicates, row.SKU)
				seenDup[row.SKU] = true
			}
			continue
		}
		s.bySKU[row.SKU] = cloneMaster(row)
	}
	sort.Strings(s.duplicates)
	return s
}

// Lookup devuelve una copia de la fila maestra del SKU.
func (s *MasterSnapshot) Lookup(sku string) (entity.ProductMaster, bool) {
	if s == nil {
		return entity.ProductMaster{}, false
	}
	row, ok := s.bySKU[sku]
	if !ok {
		return entity.ProductMaster{}, false
	}
	return cloneMaster(row), true
}

// Len cantidad de SKUs distintos en el snapshot.
func (s *MasterSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bySKU)
}

// Duplicates SKUs repetidos en la fuente (ordenados).
func (s *MasterSnapshot) Duplicates() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.duplicates...)
}

func cloneMaster(row entity.ProductMaster) entity.ProductMaster {
	out := row
	out.CaseSize = cloneInt(row.CaseSize)
	out.MinimumOrderQty = cloneInt(row.MinimumOrderQty)
	out.SafetyStockLevel = cloneInt(row.SafetyStockLevel)
	out.SupplierID = cloneString(row.SupplierID)
	out.SupplierName = cloneString(row.SupplierName)
	return out
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
