package repository

import (
	"context"
	"time"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// ArtifactRepository define el puerto de salida de los artefactos de una corrida.
// Cada Save es todo o nada: un consumidor nunca ve un artefacto a medio escribir.
// Volver a guardar para la misma fecha reemplaza el artefacto anterior.
// Los métodos devuelven la ubicación del artefacto (ruta o clave).
type ArtifactRepository interface {
	SaveReplenishment(ctx context.Context, date time.Time, records []entity.ReplenishmentRecord) (string, error)
	// SaveSupplierOrders guarda las órdenes y sus PDFs (documents, por OrderID; puede ser nil)
	// en una sola operación.
	SaveSupplierOrders(ctx context.Context, date time.Time, orders []entity.SupplierOrder, documents map[string][]byte) (string, error)
	SaveExceptionReport(ctx context.Context, date time.Time, report entity.ExceptionReport) (string, error)
	SaveRunSummary(ctx context.Context, run *entity.PipelineRun) (string, error)
	// LoadRunSummary devuelve domain.ErrNotFound si no hay corrida para la fecha.
	LoadRunSummary(ctx context.Context, date time.Time) (*entity.PipelineRun, error)
}
