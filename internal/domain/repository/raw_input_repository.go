package repository

import (
	"context"
	"time"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
)

// OrderLineBatch líneas de venta leídas de un mismo origen (un archivo por POS).
type OrderLineBatch struct {
	Source string
	Lines  []entity.OrderLine
}

// StockBatch registros de stock leídos de un mismo origen (un archivo por bodega).
type StockBatch struct {
	Source  string
	Records []entity.StockRecord
}

// RawInputInventory cantidad de orígenes disponibles para una fecha.
type RawInputInventory struct {
	OrderSources []string
	StockSources []string
}

// RawInputRepository define el puerto de lectura de los datos crudos del día.
// Los problemas de forma detectados al parsear (JSON inválido, columnas faltantes,
// valores no numéricos) se devuelven como issues; error solo indica fallo de la fuente.
type RawInputRepository interface {
	LoadOrderLines(ctx context.Context, date time.Time) ([]OrderLineBatch, []procurement.ValidationIssue, error)
	LoadStockRecords(ctx context.Context, date time.Time) ([]StockBatch, []procurement.ValidationIssue, error)
	// Probe lista los orígenes presentes para la fecha sin leerlos.
	Probe(ctx context.Context, date time.Time) (RawInputInventory, error)
}
