package procurement

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// DateLocker implementación en memoria de RunLocker, válida para un único proceso.
type DateLocker struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewDateLocker construye el locker en memoria.
func NewDateLocker() *DateLocker {
	return &DateLocker{active: make(map[string]struct{})}
}

var _ RunLocker = (*DateLocker)(nil)

// Acquire toma la fecha; la función devuelta la libera y es idempotente.
func (l *DateLocker) Acquire(_ context.Context, date time.Time) (func(context.Context) error, error) {
	key := date.Format(entity.DateLayout)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.active[key]; busy {
		return nil, domain.ErrRunInProgress
	}
	l.active[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.active, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
