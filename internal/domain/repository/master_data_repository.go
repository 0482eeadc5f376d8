package repository

import (
	"context"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// MasterDataRepository define el puerto de consulta de datos maestros
// (producto + regla de reposición + proveedor). Se lee una vez por corrida.
type MasterDataRepository interface {
	LoadMasterData(ctx context.Context) ([]entity.ProductMaster, error)
	Ping(ctx context.Context) error
}
