package procurement

import (
	"context"
	"time"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// RunLocker garantiza como máximo una corrida activa por fecha de proceso.
// Acquire devuelve domain.ErrRunInProgress si la fecha ya está tomada.
type RunLocker interface {
	Acquire(ctx context.Context, date time.Time) (release func(context.Context) error, err error)
}

// OrderRenderer genera la representación imprimible (PDF) de una orden de compra.
type OrderRenderer interface {
	Render(order entity.SupplierOrder) ([]byte, error)
}
